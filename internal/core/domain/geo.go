package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents an airport location (WGS 84) with its display labels.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	City    string  `json:"city,omitempty"`
	Airport string  `json:"airport,omitempty"`
	Code    string  `json:"code,omitempty"`
}

// Validate returns ErrMalformedCoordinate if the point is not finite or
// falls outside [-90,90] x [-180,180].
func (g GeoPoint) Validate() error {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lng) || math.IsInf(g.Lat, 0) || math.IsInf(g.Lng, 0) {
		return fmt.Errorf("%w: lat=%v lng=%v is not finite", ErrMalformedCoordinate, g.Lat, g.Lng)
	}
	if g.Lat < -90 || g.Lat > 90 {
		return fmt.Errorf("%w: lat %v outside [-90,90]", ErrMalformedCoordinate, g.Lat)
	}
	if g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("%w: lng %v outside [-180,180]", ErrMalformedCoordinate, g.Lng)
	}
	return nil
}

// SameLocation reports whether two points share coordinates, ignoring labels.
func (g GeoPoint) SameLocation(other GeoPoint) bool {
	return g.Lat == other.Lat && g.Lng == other.Lng
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// Point3D is a position in scene space. Values are never mutated after
// creation; every operation returns a new point.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns p + o.
func (p Point3D) Add(o Point3D) Point3D {
	return Point3D{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns p - o.
func (p Point3D) Sub(o Point3D) Point3D {
	return Point3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Scale returns p * s.
func (p Point3D) Scale(s float64) Point3D {
	return Point3D{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Norm returns the Euclidean length of p.
func (p Point3D) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Normalize returns p scaled to unit length. The zero vector stays zero.
func (p Point3D) Normalize() Point3D {
	n := p.Norm()
	if n == 0 {
		return Point3D{}
	}
	return p.Scale(1 / n)
}

// Mid returns the midpoint of p and o.
func (p Point3D) Mid(o Point3D) Point3D {
	return p.Add(o).Scale(0.5)
}

// IsFinite reports whether every component is a finite number.
func (p Point3D) IsFinite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Polyline is a connected run of points drawn as line segments.
type Polyline []Point3D
