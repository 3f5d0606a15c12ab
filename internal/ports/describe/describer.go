package describe

import "context"

// Describer genera una descripción en texto libre de una imagen.
// El texto puede terminar con una línea "Tags: a, b, c" (opcional).
type Describer interface {
	Describe(ctx context.Context, image []byte) (string, error)
}
