package matching

import (
	"testing"

	"pet-reunite/internal/domain/reports"

	"github.com/stretchr/testify/assert"
)

func TestFilterCandidates(t *testing.T) {
	query := reports.Report{
		ID:       "q1",
		Kind:     reports.KindLost,
		Category: "dog",
		Status:   reports.StatusActive,
	}

	pool := []reports.Report{
		{ID: "f1", Kind: reports.KindFound, Category: "dog", Status: reports.StatusActive},
		{ID: "f2", Kind: reports.KindFound, Category: "cat", Status: reports.StatusActive},
		{ID: "f3", Kind: reports.KindFound, Category: "", Status: reports.StatusActive}, // sin especie
		{ID: "f4", Kind: reports.KindFound, Category: "dog", Status: reports.StatusResolved},
		{ID: "l1", Kind: reports.KindLost, Category: "dog", Status: reports.StatusActive},
		{ID: "q1", Kind: reports.KindFound, Category: "dog", Status: reports.StatusActive}, // mismo id
	}

	got := FilterCandidates(query, pool)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	// Pasa el match exacto de categoría y el wildcard; quedan afuera la otra
	// especie, los no-activos, el mismo kind y el propio reporte.
	assert.Equal(t, []string{"f1", "f3"}, ids)
}

func TestFilterCandidates_QueryWithoutCategoryIsWildcard(t *testing.T) {
	query := reports.Report{ID: "q1", Kind: reports.KindFound, Status: reports.StatusActive}

	pool := []reports.Report{
		{ID: "l1", Kind: reports.KindLost, Category: "dog", Status: reports.StatusActive},
		{ID: "l2", Kind: reports.KindLost, Category: "cat", Status: reports.StatusActive},
	}

	got := FilterCandidates(query, pool)
	assert.Len(t, got, 2)
}

func TestFilterCandidates_EmptyPool(t *testing.T) {
	query := reports.Report{ID: "q1", Kind: reports.KindLost, Status: reports.StatusActive}
	got := FilterCandidates(query, nil)
	assert.Empty(t, got)
}
