package vision

import "context"

// FaceMatch es el resultado de comparar dos imágenes.
// Matched=false significa "no se detectó cara / sin match confiable":
// es un outcome normal, no un error.
type FaceMatch struct {
	Matched    bool
	Similarity float64 // 0-100
}

// Label es una etiqueta detectada en una imagen.
type Label struct {
	Name       string
	Confidence float64 // 0-100
}

// Recognizer es el colaborador de reconocimiento visual.
type Recognizer interface {
	CompareFaces(ctx context.Context, imageA, imageB []byte) (FaceMatch, error)
	DetectLabels(ctx context.Context, image []byte) ([]Label, error)
}
