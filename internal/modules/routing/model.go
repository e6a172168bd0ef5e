// README: Route geometry and great-circle helpers.
package routing

import (
	"math"

	"oortgo/internal/types"
)

const earthRadiusKm = 6371.0

// Route is a drivable path. Fallback marks a straight line used because the
// router failed or timed out.
type Route struct {
	Points     []types.Point `json:"points"`
	DistanceKm float64       `json:"distanceKm"`
	Fallback   bool          `json:"fallback"`
}

// HaversineKm returns the great-circle distance in kilometres between a and b.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// LengthKm sums the segment lengths of a polyline.
func LengthKm(points []types.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1], points[i])
	}
	return total
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
