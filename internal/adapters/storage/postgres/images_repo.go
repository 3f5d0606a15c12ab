package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	imagesport "pet-reunite/internal/ports/images"
)

// ImagesRepo guarda las imágenes como bytea. Write-once:
// un ref ya escrito no se reemplaza (ON CONFLICT DO NOTHING).
type ImagesRepo struct {
	db *sql.DB
}

func NewImagesRepo(db *sql.DB) *ImagesRepo {
	return &ImagesRepo{db: db}
}

func (r *ImagesRepo) Put(ctx context.Context, ref string, data []byte) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errors.New("image ref required")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO images (ref, data, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (ref) DO NOTHING
	`, ref, data)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return imagesport.ErrExists
	}
	return nil
}

func (r *ImagesRepo) Get(ctx context.Context, ref string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM images WHERE ref = $1
	`, ref).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, imagesport.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
