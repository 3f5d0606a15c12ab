package reports

import "time"

// Coordinate es un par lat/lon en grados.
type Coordinate struct {
	Lat float64
	Lon float64
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Report representa un avistamiento de mascota perdida o encontrada.
// Kind es inmutable después de crear; Status solo avanza.
type Report struct {
	ID          string
	Kind        Kind
	OwnerUserID string

	// Category es la especie (dog, cat, ...). Vacío = sin especificar.
	Category string

	// Sets de tags normalizados (lowercase, sin duplicados).
	Breeds   []string
	Colors   []string
	Features []string

	Size   SizeClass
	Age    AgeClass
	Gender Gender

	Description string

	// Coordinate es opcional: reportes sin ubicación siguen siendo válidos.
	Coordinate *Coordinate

	// EventDate: última vez visto (lost) o fecha de hallazgo (found).
	EventDate *time.Time

	// ImageRef es el puntero opaco a la imagen almacenada. Requerido.
	ImageRef string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
