package postgres

import (
	"context"
	"database/sql"

	"pet-reunite/internal/domain/matching"
)

type MatchesRepo struct {
	db *sql.DB
}

func NewMatchesRepo(db *sql.DB) *MatchesRepo {
	return &MatchesRepo{db: db}
}

// Upsert inserta el par si no existe. La atomicidad descansa en el unique
// index sobre (pair_key): ON CONFLICT DO NOTHING hace que dos corridas
// concurrentes sobre el mismo par dejen exactamente un row.
func (r *MatchesRepo) Upsert(ctx context.Context, rec matching.MatchRecord) (matching.MatchRecord, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO match_records (
			id, pair_key, lost_report_id, found_report_id, confidence, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (pair_key) DO NOTHING
	`,
		rec.ID,
		matching.PairKey(rec.LostReportID, rec.FoundReportID),
		rec.LostReportID,
		rec.FoundReportID,
		rec.Confidence,
		rec.CreatedAt,
	)
	if err != nil {
		return matching.MatchRecord{}, false, err
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return rec, true, nil
	}

	// Ya existía: devolvemos el record vigente (nunca se muta).
	existing, err := r.GetByPair(ctx, rec.LostReportID, rec.FoundReportID)
	if err != nil {
		return matching.MatchRecord{}, false, err
	}
	return existing, false, nil
}

func (r *MatchesRepo) GetByPair(ctx context.Context, lostID, foundID string) (matching.MatchRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lost_report_id, found_report_id, confidence, created_at
		FROM match_records
		WHERE pair_key = $1
	`, matching.PairKey(lostID, foundID))

	var rec matching.MatchRecord
	if err := row.Scan(
		&rec.ID,
		&rec.LostReportID,
		&rec.FoundReportID,
		&rec.Confidence,
		&rec.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return matching.MatchRecord{}, ErrNotFound
		}
		return matching.MatchRecord{}, err
	}
	return rec, nil
}

func (r *MatchesRepo) ListByReport(ctx context.Context, reportID string) ([]matching.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lost_report_id, found_report_id, confidence, created_at
		FROM match_records
		WHERE lost_report_id = $1 OR found_report_id = $1
		ORDER BY created_at DESC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.MatchRecord, 0)
	for rows.Next() {
		var rec matching.MatchRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.LostReportID,
			&rec.FoundReportID,
			&rec.Confidence,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
