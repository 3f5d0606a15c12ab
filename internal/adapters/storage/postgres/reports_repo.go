package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-reunite/internal/domain/reports"

	"github.com/lib/pq"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	var lat, lon sql.NullFloat64
	if rep.Coordinate != nil {
		lat = sql.NullFloat64{Float64: rep.Coordinate.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: rep.Coordinate.Lon, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, kind, owner_user_id,
			category, breeds, colors, features,
			size, age, gender, description,
			lat, lon, event_date, image_ref, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		rep.ID,
		string(rep.Kind),
		rep.OwnerUserID,
		rep.Category,
		pq.Array(rep.Breeds),
		pq.Array(rep.Colors),
		pq.Array(rep.Features),
		string(rep.Size),
		string(rep.Age),
		string(rep.Gender),
		rep.Description,
		lat,
		lon,
		toNullDate(rep.EventDate),
		rep.ImageRef,
		string(rep.Status),
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	return err
}

const reportColumns = `
	id, kind, owner_user_id,
	category, breeds, colors, features,
	size, age, gender, description,
	lat, lon, event_date, image_ref, status,
	created_at, updated_at
`

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.Report{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE id = $1
	`, id)

	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return reports.Report{}, ErrNotFound
	}
	return rep, err
}

func (r *ReportsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]reports.Report, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReports(rows)
}

func (r *ReportsRepo) ListByKind(ctx context.Context, kind reports.Kind) ([]reports.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE kind = $1
		ORDER BY created_at ASC
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReports(rows)
}

func (r *ReportsRepo) UpdateStatus(ctx context.Context, id string, status reports.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (reports.Report, error) {
	var rep reports.Report
	var kind, size, age, gender, status string
	var breeds, colors, features pq.StringArray
	var lat, lon sql.NullFloat64
	var eventDate sql.NullTime

	if err := row.Scan(
		&rep.ID,
		&kind,
		&rep.OwnerUserID,
		&rep.Category,
		&breeds,
		&colors,
		&features,
		&size,
		&age,
		&gender,
		&rep.Description,
		&lat,
		&lon,
		&eventDate,
		&rep.ImageRef,
		&status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	); err != nil {
		return reports.Report{}, err
	}

	rep.Kind = reports.Kind(kind)
	rep.Size = reports.SizeClass(size)
	rep.Age = reports.AgeClass(age)
	rep.Gender = reports.Gender(gender)
	rep.Status = reports.Status(status)
	rep.Breeds = breeds
	rep.Colors = colors
	rep.Features = features

	if lat.Valid && lon.Valid {
		rep.Coordinate = &reports.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	if eventDate.Valid {
		t := eventDate.Time
		rep.EventDate = &t
	}

	return rep, nil
}

func collectReports(rows *sql.Rows) ([]reports.Report, error) {
	out := make([]reports.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// event_date es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
