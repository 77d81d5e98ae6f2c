package geospatial

import (
	"math"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in kilometres between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// FlightDistanceKm is the great-circle length of a flight.
func FlightDistanceKm(pair domain.FlightPair) float64 {
	return Haversine(pair.From.Lat, pair.From.Lng, pair.To.Lat, pair.To.Lng)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
