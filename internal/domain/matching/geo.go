package matching

import (
	"math"

	"pet-reunite/internal/domain/reports"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// decayScaleKm controla la caída exponencial del score por distancia.
const decayScaleKm = 10.0

// DistanceKm calcula la distancia great-circle entre dos coordenadas.
func DistanceKm(a, b reports.Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * earthRadiusKm
}

// GeoCutoff es la variante de corte duro: crédito completo dentro del radio,
// cero afuera. Si falta cualquiera de las coordenadas devuelve Absent
// (la ausencia no penaliza). Devuelve también la distancia, si se pudo calcular.
func GeoCutoff(a, b *reports.Coordinate, radiusKm float64) (Signal, *float64) {
	if a == nil || b == nil {
		return Absent(), nil
	}
	d := DistanceKm(*a, *b)
	if d <= radiusKm {
		return Present(1), &d
	}
	return Present(0), &d
}

// GeoDecay es la variante suave usada por el fallback de metadata:
// exp(-distancia/10) degrada gradualmente en vez de cortar.
func GeoDecay(distanceKm float64) float64 {
	return math.Exp(-distanceKm / decayScaleKm)
}
