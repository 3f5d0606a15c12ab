package matching

import "pet-reunite/internal/domain/reports"

// MetadataWeights configura la suma ponderada del fallback estructurado.
type MetadataWeights struct {
	Category float64
	Breed    float64
	Color    float64
	Gender   float64
	Size     float64
	Age      float64
	Distance float64
}

// DefaultMetadataWeights son los pesos históricos del fallback.
func DefaultMetadataWeights() MetadataWeights {
	return MetadataWeights{
		Category: 0.30,
		Breed:    0.20,
		Color:    0.15,
		Gender:   0.15,
		Size:     0.10,
		Age:      0.10,
		Distance: 0.20,
	}
}

// neutralScore se devuelve cuando ningún factor contribuye:
// "no sabemos, asumimos plausible". Política deliberada, no un error.
const neutralScore = 0.5

// MetadataScore calcula similitud solo con campos estructurados.
// Cada factor contribuye únicamente si ambos reportes traen el dato;
// el total se normaliza por la suma de pesos que contribuyeron.
func MetadataScore(w MetadataWeights, query, cand reports.Report) float64 {
	var sum, weight float64

	add := func(wi, vi float64) {
		sum += wi * vi
		weight += wi
	}

	if query.Category != "" && cand.Category != "" {
		add(w.Category, exactMatch(query.Category == cand.Category))
	}
	if len(query.Breeds) > 0 && len(cand.Breeds) > 0 {
		add(w.Breed, overlapFraction(query.Breeds, cand.Breeds))
	}
	if len(query.Colors) > 0 && len(cand.Colors) > 0 {
		add(w.Color, overlapFraction(query.Colors, cand.Colors))
	}
	if known(query.Gender) && known(cand.Gender) {
		add(w.Gender, exactMatch(query.Gender == cand.Gender))
	}
	if query.Size != "" && cand.Size != "" {
		add(w.Size, exactMatch(query.Size == cand.Size))
	}
	if query.Age != "" && cand.Age != "" {
		add(w.Age, exactMatch(query.Age == cand.Age))
	}
	if query.Coordinate != nil && cand.Coordinate != nil {
		add(w.Distance, GeoDecay(DistanceKm(*query.Coordinate, *cand.Coordinate)))
	}

	if weight == 0 {
		return neutralScore
	}
	return sum / weight
}

// overlapFraction = compartidos / max(|A|, |B|).
func overlapFraction(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}

	shared := 0
	for _, t := range b {
		if _, ok := setA[t]; ok {
			shared++
			delete(setA, t) // un tag compartido cuenta una vez
		}
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return float64(shared) / float64(maxLen)
}

// SharedTagCount expone el conteo de tags compartidos (lo usa el esquema aditivo).
func SharedTagCount(a, b []string) int {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := setA[t]; ok {
			n++
			delete(setA, t)
		}
	}
	return n
}

func exactMatch(eq bool) float64 {
	if eq {
		return 1
	}
	return 0
}

func known(g reports.Gender) bool {
	return g != "" && g != reports.GenderUnknown
}
