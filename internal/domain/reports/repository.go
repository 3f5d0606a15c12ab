package reports

import "context"

type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Report, error)

	// ListByKind devuelve la población completa de un kind (snapshot).
	// El Candidate Filter del matcher decide status/categoría; acá no se filtra.
	ListByKind(ctx context.Context, kind Kind) ([]Report, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
}
