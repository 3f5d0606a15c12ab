package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pet-reunite/internal/domain/matching"
)

func TestMatchesRepo_UpsertDedupesByPair(t *testing.T) {
	repo := NewMatchesRepo()
	ctx := context.Background()

	first := matching.MatchRecord{
		ID:            "m1",
		LostReportID:  "lost-1",
		FoundReportID: "found-1",
		Confidence:    0.8,
		CreatedAt:     time.Now(),
	}

	got, created, err := repo.Upsert(ctx, first)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if !created || got.ID != "m1" {
		t.Fatalf("expected created record m1, got created=%v id=%s", created, got.ID)
	}

	// Mismo par con los ids invertidos: debe absorber.
	dup := first
	dup.ID = "m2"
	dup.LostReportID, dup.FoundReportID = first.FoundReportID, first.LostReportID

	got, created, err = repo.Upsert(ctx, dup)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if created {
		t.Fatal("expected duplicate to be absorbed")
	}
	if got.ID != "m1" {
		t.Fatalf("expected existing record m1, got %s", got.ID)
	}
}

func TestMatchesRepo_ConcurrentUpsertsCreateOne(t *testing.T) {
	repo := NewMatchesRepo()
	ctx := context.Background()

	const workers = 16

	var wg sync.WaitGroup
	createdCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := matching.MatchRecord{
				ID:            fmt.Sprintf("m%d", i),
				LostReportID:  "lost-1",
				FoundReportID: "found-1",
				Confidence:    0.9,
				CreatedAt:     time.Now(),
			}
			_, created, err := repo.Upsert(ctx, rec)
			if err != nil {
				t.Errorf("Upsert returned error: %v", err)
				return
			}
			createdCount <- created
		}(i)
	}
	wg.Wait()
	close(createdCount)

	total := 0
	for created := range createdCount {
		if created {
			total++
		}
	}
	if total != 1 {
		t.Fatalf("expected exactly one creation, got %d", total)
	}

	recs, err := repo.ListByReport(ctx, "lost-1")
	if err != nil {
		t.Fatalf("ListByReport returned error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(recs))
	}
}

func TestMatchesRepo_GetByPairNotFound(t *testing.T) {
	repo := NewMatchesRepo()

	_, err := repo.GetByPair(context.Background(), "a", "b")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
