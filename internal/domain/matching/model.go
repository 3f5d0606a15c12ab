package matching

import (
	"time"

	"pet-reunite/internal/domain/reports"
)

// MatchCandidate es el resultado efímero de scorear un candidato.
// No se persiste: solo los aceptados terminan en un MatchRecord.
type MatchCandidate struct {
	Report reports.Report

	// Señales por scorer. Cada una puede estar ausente o fallida.
	Visual   Signal
	Labels   Signal // componente label-overlap del score visual, para re-blending
	Semantic Signal
	Geo      Signal
	Metadata Signal

	// DistanceKm solo si ambos reportes tienen coordenada.
	DistanceKm *float64

	Confidence float64

	// Degraded indica que alguna señal externa falló y el score puede ser menos preciso.
	Degraded bool
}

// MatchRecord es el resultado persistido de un match aceptado.
// Inmutable una vez creado. A lo sumo uno por par (lost, found).
type MatchRecord struct {
	ID            string
	LostReportID  string
	FoundReportID string
	Confidence    float64
	CreatedAt     time.Time
}

// PairKey normaliza el par no-ordenado a una clave estable.
func PairKey(lostID, foundID string) string {
	if lostID < foundID {
		return lostID + ":" + foundID
	}
	return foundID + ":" + lostID
}
