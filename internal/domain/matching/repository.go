package matching

import "context"

// MatchRepository persiste MatchRecords con dedupe por par no-ordenado.
type MatchRepository interface {
	// Upsert inserta el record si el par (lost, found) no existe todavía.
	// Si ya existe devuelve el record vigente y created=false; nunca es error.
	// Debe ser atómico: dos corridas concurrentes sobre el mismo par
	// no pueden producir dos records.
	Upsert(ctx context.Context, rec MatchRecord) (MatchRecord, bool, error)

	GetByPair(ctx context.Context, lostID, foundID string) (MatchRecord, error)
	ListByReport(ctx context.Context, reportID string) ([]MatchRecord, error)
}
