// Package geo implements great-circle distance between peer coordinates.
package geo

import (
	"math"

	"github.com/nearlink-net/nearlink/internal/domain"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine distance between two points.
// Invalid coordinates yield +Inf so the pair is excluded by any range
// filter instead of failing the whole query. Total function: never panics.
func DistanceMeters(a, b domain.Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	d := EarthRadiusMeters * c
	if d < 0 {
		// Guards float rounding producing a negative epsilon.
		return 0
	}
	return d
}
