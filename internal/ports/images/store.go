package images

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("image not found")
	ErrExists   = errors.New("image already exists")
)

// Store resuelve referencias opacas de imagen a bytes.
// Write-once: un ref ya escrito no se reemplaza.
type Store interface {
	Put(ctx context.Context, ref string, data []byte) error
	Get(ctx context.Context, ref string) ([]byte, error)
}
