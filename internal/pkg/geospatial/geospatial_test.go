package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

const tol = 1e-9

var (
	jfk = domain.GeoPoint{Lat: 40.6413, Lng: -73.7781, City: "New York", Airport: "JFK", Code: "JFK"}
	lhr = domain.GeoPoint{Lat: 51.4700, Lng: -0.4543, City: "London", Airport: "Heathrow", Code: "LHR"}
)

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func nearPoint(a, b domain.Point3D) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestProjectToSphere_NormEqualsRadius(t *testing.T) {
	for _, r := range []float64{0.5, 1, 1.5, 6371} {
		for lat := -90.0; lat <= 90; lat += 15 {
			for lng := -180.0; lng <= 180; lng += 30 {
				p := geospatial.ProjectToSphere(lat, lng, r)
				if math.Abs(p.Norm()-r) > tol*r {
					t.Fatalf("lat=%v lng=%v r=%v: expected norm %v, got %v", lat, lng, r, r, p.Norm())
				}
			}
		}
	}
}

func TestProjectToSphere_NorthPole(t *testing.T) {
	for lng := -180.0; lng <= 180; lng += 45 {
		p := geospatial.ProjectToSphere(90, lng, 2)
		if !nearPoint(p, domain.Point3D{X: 0, Y: 2, Z: 0}) {
			t.Errorf("lng=%v: expected (0,2,0), got %+v", lng, p)
		}
	}
}

func TestProjectToSphere_KnownAxes(t *testing.T) {
	// lat 0, lng 0: theta = pi, so x = +r.
	p := geospatial.ProjectToSphere(0, 0, 1)
	if !nearPoint(p, domain.Point3D{X: 1, Y: 0, Z: 0}) {
		t.Errorf("expected (1,0,0), got %+v", p)
	}

	// lat 0, lng 90: theta = 3pi/2, so z = -r.
	p = geospatial.ProjectToSphere(0, 90, 1)
	if !nearPoint(p, domain.Point3D{X: 0, Y: 0, Z: -1}) {
		t.Errorf("expected (0,0,-1), got %+v", p)
	}

	p = geospatial.ProjectToSphere(-90, 10, 3)
	if !nearPoint(p, domain.Point3D{X: 0, Y: -3, Z: 0}) {
		t.Errorf("expected (0,-3,0), got %+v", p)
	}
}

func TestGenerateArc_JFKToLHR(t *testing.T) {
	arc := geospatial.GenerateArc(jfk, lhr, 1.5, 50)
	if len(arc) != 51 {
		t.Fatalf("expected 51 points, got %d", len(arc))
	}

	wantFirst := geospatial.ProjectToSphere(jfk.Lat, jfk.Lng, 1)
	wantLast := geospatial.ProjectToSphere(lhr.Lat, lhr.Lng, 1)

	if got := arc[0].Normalize(); !nearPoint(got, wantFirst) {
		t.Errorf("first point direction: expected %+v, got %+v", wantFirst, got)
	}
	if got := arc[50].Normalize(); !nearPoint(got, wantLast) {
		t.Errorf("last point direction: expected %+v, got %+v", wantLast, got)
	}

	for i, p := range arc {
		if p.Norm() < 1.5 {
			t.Errorf("point %d below base radius: %v", i, p.Norm())
		}
	}
}

func TestGenerateArc_HeightProfile(t *testing.T) {
	const r, n = 1.5, 50
	arc := geospatial.GenerateArc(jfk, lhr, r, n)

	for i, p := range arc {
		tt := float64(i) / n
		if want := geospatial.ArcRadius(r, tt); math.Abs(p.Norm()-want) > tol {
			t.Errorf("point %d: expected radius %v, got %v", i, want, p.Norm())
		}
	}

	for i := 0; i <= n/2; i++ {
		if math.Abs(arc[i].Norm()-arc[n-i].Norm()) > tol {
			t.Errorf("height not symmetric at %d/%d: %v vs %v", i, n-i, arc[i].Norm(), arc[n-i].Norm())
		}
	}

	if h := geospatial.ArcHeight(0); h != 0 {
		t.Errorf("expected zero raise at t=0, got %v", h)
	}
	if h := geospatial.ArcHeight(1); math.Abs(h) > 1e-12 {
		t.Errorf("expected zero raise at t=1, got %v", h)
	}
	peak := geospatial.ArcHeight(0.5)
	if !near(peak, geospatial.ArcPeak) {
		t.Errorf("expected peak %v at t=0.5, got %v", geospatial.ArcPeak, peak)
	}
	for i := 0; i <= 100; i++ {
		if h := geospatial.ArcHeight(float64(i) / 100); h > peak+tol {
			t.Errorf("raise %v at t=%v exceeds midpoint raise %v", h, float64(i)/100, peak)
		}
	}
}

func TestGenerateArc_Idempotent(t *testing.T) {
	a := geospatial.GenerateArc(jfk, lhr, 1.5, 50)
	b := geospatial.GenerateArc(jfk, lhr, 1.5, 50)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateArc_SameEndpoints(t *testing.T) {
	arc := geospatial.GenerateArc(jfk, jfk, 1.5, 50)
	if len(arc) != 51 {
		t.Fatalf("expected 51 points, got %d", len(arc))
	}
	for i, p := range arc {
		if !p.IsFinite() {
			t.Fatalf("point %d is not finite: %+v", i, p)
		}
		if !nearPoint(p, arc[0]) {
			t.Errorf("point %d = %+v, expected all points at %+v", i, p, arc[0])
		}
	}
	want := geospatial.ProjectToSphere(jfk.Lat, jfk.Lng, 1)
	if !nearPoint(arc[0].Normalize(), want) {
		t.Errorf("expected direction %+v, got %+v", want, arc[0].Normalize())
	}
}

func TestGenerateArc_SegmentsClamped(t *testing.T) {
	arc := geospatial.GenerateArc(jfk, lhr, 1.5, 0)
	if len(arc) != 2 {
		t.Fatalf("expected 2 points for segments<1, got %d", len(arc))
	}
}

func TestGenerateArc_AntipodalStaysFinite(t *testing.T) {
	a := domain.GeoPoint{Lat: 0, Lng: 0}
	b := domain.GeoPoint{Lat: 0, Lng: 180}
	for i, p := range geospatial.GenerateArc(a, b, 1, 10) {
		if !p.IsFinite() {
			t.Fatalf("point %d is not finite: %+v", i, p)
		}
	}
}

func TestHaversine_JFKToLHR(t *testing.T) {
	d := geospatial.FlightDistanceKm(domain.FlightPair{From: jfk, To: lhr})
	if d < 5500 || d > 5600 {
		t.Errorf("expected ~5540 km, got %.1f", d)
	}
	if geospatial.Haversine(jfk.Lat, jfk.Lng, jfk.Lat, jfk.Lng) != 0 {
		t.Error("expected zero distance for identical points")
	}
}
