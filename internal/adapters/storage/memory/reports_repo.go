package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-reunite/internal/domain/reports"
)

var (
	ErrNotFound = errors.New("not found")
)

type reportsRepo struct {
	mu   sync.RWMutex
	byID map[string]reports.Report
}

func NewReportsRepo() reports.Repository {
	return &reportsRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportsRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.byID[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *reportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *reportsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0)
	for _, rep := range r.byID {
		if rep.OwnerUserID == ownerUserID {
			out = append(out, rep)
		}
	}

	sortByCreatedAt(out)
	return out, nil
}

func (r *reportsRepo) ListByKind(ctx context.Context, kind reports.Kind) ([]reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0)
	for _, rep := range r.byID {
		if rep.Kind == kind {
			out = append(out, rep)
		}
	}

	sortByCreatedAt(out)
	return out, nil
}

func (r *reportsRepo) UpdateStatus(ctx context.Context, id string, status reports.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.ErrNotFound
	}
	rep.Status = status
	r.byID[id] = rep
	return nil
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortByCreatedAt(out []reports.Report) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
