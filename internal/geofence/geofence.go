// Package geofence valida a presença física do corretor pela distância
// até a loja.
package geofence

import (
	"math"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// EarthRadius em metros.
const EarthRadius = 6371000.0

// Distance é a distância haversine entre dois pontos, em metros.
func Distance(a, b entity.Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// arredondamento pode passar de 1 perto dos antípodas
	h = math.Min(1, math.Max(0, h))

	return EarthRadius * 2 * math.Asin(math.Sqrt(h))
}

// Within vale na borda: distância == raio está dentro.
func Within(c entity.Coordinate, store entity.Store) bool {
	return Distance(c, store.Location) <= store.Radius
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
