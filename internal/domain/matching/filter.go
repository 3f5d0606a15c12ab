package matching

import "pet-reunite/internal/domain/reports"

// FilterCandidates reduce la población al subconjunto estructuralmente plausible.
// Función pura sobre un snapshot; sin side effects.
//
// Criterios:
// - kind contrario al query (un lost se compara contra found)
// - status active
// - categoría exacta cuando el query la especifica; vacío es wildcard
//   (de cualquiera de los dos lados: un found sin especie no se descarta acá,
//   la categoría entra igual al score de metadata)
//
// Breed/color NO se filtran: overlap parcial suma score, no excluye.
func FilterCandidates(query reports.Report, pool []reports.Report) []reports.Report {
	want := query.Kind.Opposite()

	out := make([]reports.Report, 0, len(pool))
	for _, c := range pool {
		if c.Kind != want {
			continue
		}
		if c.ID == query.ID {
			continue
		}
		if c.Status != reports.StatusActive {
			continue
		}
		if query.Category != "" && c.Category != "" && c.Category != query.Category {
			continue
		}
		out = append(out, c)
	}
	return out
}
