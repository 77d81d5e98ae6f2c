package geospatial

import (
	"math"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// ProjectToSphere converts a latitude/longitude in degrees to a point on a
// sphere of the given radius, in the scene's y-up frame.
//
// Inputs are not validated: lat must be in [-90,90], lng in [-180,180] and
// radius > 0. At lat = 90 the result is (0, radius, 0) whatever lng is;
// that pole degeneracy is inherent to the mapping.
func ProjectToSphere(lat, lng, radius float64) domain.Point3D {
	phi := toRad(90 - lat)
	theta := toRad(lng + 180)

	return domain.Point3D{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// Project is ProjectToSphere for a GeoPoint.
func Project(p domain.GeoPoint, radius float64) domain.Point3D {
	return ProjectToSphere(p.Lat, p.Lng, radius)
}
