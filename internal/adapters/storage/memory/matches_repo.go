package memory

import (
	"context"
	"sync"

	"pet-reunite/internal/domain/matching"
)

type matchesRepo struct {
	mu     sync.Mutex
	byPair map[string]matching.MatchRecord
}

func NewMatchesRepo() matching.MatchRepository {
	return &matchesRepo{
		byPair: make(map[string]matching.MatchRecord),
	}
}

// Upsert con dedupe por par no-ordenado. El mutex cubre el check-then-insert
// completo, así corridas concurrentes sobre el mismo par nunca duplican.
func (r *matchesRepo) Upsert(ctx context.Context, rec matching.MatchRecord) (matching.MatchRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := matching.PairKey(rec.LostReportID, rec.FoundReportID)
	if existing, ok := r.byPair[key]; ok {
		return existing, false, nil
	}

	r.byPair[key] = rec
	return rec, true, nil
}

func (r *matchesRepo) GetByPair(ctx context.Context, lostID, foundID string) (matching.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byPair[matching.PairKey(lostID, foundID)]
	if !ok {
		return matching.MatchRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *matchesRepo) ListByReport(ctx context.Context, reportID string) ([]matching.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]matching.MatchRecord, 0)
	for _, rec := range r.byPair {
		if rec.LostReportID == reportID || rec.FoundReportID == reportID {
			out = append(out, rec)
		}
	}
	return out, nil
}
