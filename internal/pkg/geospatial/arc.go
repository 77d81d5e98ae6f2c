package geospatial

import (
	"math"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

const (
	// DefaultSegments is the number of line pieces in a flight arc.
	DefaultSegments = 50

	// SurfaceOffset lifts arc endpoints just above the sphere to avoid
	// z-fighting with the mesh.
	SurfaceOffset = 1.01

	// ArcLift is the radius factor of the arc at its endpoints.
	ArcLift = 1.02

	// ArcPeak is the extra height at the middle of the arc, in scene units.
	ArcPeak = 0.2
)

// ArcHeight is the raise above baseRadius*ArcLift at path fraction t.
// It is zero at t=0 and t=1 and peaks at t=0.5.
func ArcHeight(t float64) float64 {
	return math.Sin(t*math.Pi) * ArcPeak
}

// ArcRadius is the distance from the sphere centre of the arc at t.
func ArcRadius(baseRadius, t float64) float64 {
	return baseRadius*ArcLift + ArcHeight(t)
}

// GenerateArc returns segments+1 points of a raised great-circle style arc
// from one airport to another. The chord between the projected endpoints is
// interpolated linearly, then every sample is pushed back out to
// ArcRadius(t).
//
// segments < 1 is treated as 1. When both endpoints share a location the
// arc collapses to segments+1 copies of one surface point. Coordinates are
// not validated; malformed input yields NaN points.
func GenerateArc(from, to domain.GeoPoint, baseRadius float64, segments int) []domain.Point3D {
	if segments < 1 {
		segments = 1
	}

	start := Project(from, baseRadius*SurfaceOffset)
	end := Project(to, baseRadius*SurfaceOffset)
	delta := end.Sub(start)

	points := make([]domain.Point3D, 0, segments+1)

	if from.SameLocation(to) {
		p := start.Normalize().Scale(baseRadius * ArcLift)
		for i := 0; i <= segments; i++ {
			points = append(points, p)
		}
		return points
	}

	var prev domain.Point3D
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		dir := start.Add(delta.Scale(t)).Normalize()
		// Antipodal endpoints put the chord through the centre at t=0.5.
		if dir == (domain.Point3D{}) {
			dir = prev
		}
		points = append(points, dir.Scale(ArcRadius(baseRadius, t)))
		prev = dir
	}
	return points
}
