package scene

import (
	"errors"
	"fmt"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

const (
	// MarkerOffset places airport markers on the same shell as the arc's
	// surface endpoints so the arc visibly starts and ends at a marker.
	MarkerOffset = geospatial.SurfaceOffset

	// DirectionLift is the radius factor of the direction indicator. It
	// keeps the indicator above the arc's peak.
	DirectionLift = 1.2

	// BorderOffset keeps border lines just off the sphere mesh.
	BorderOffset = 1.001
)

// PlaceMarkers computes departure, arrival and direction-indicator
// positions for a flight. A malformed endpoint omits its marker and the
// direction indicator; the returned error describes what was dropped.
func PlaceMarkers(pair domain.FlightPair, baseRadius float64) (domain.Markers, error) {
	var (
		m    domain.Markers
		errs []error
	)

	if err := pair.From.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("departure marker: %w", err))
	} else {
		p := geospatial.Project(pair.From, baseRadius*MarkerOffset)
		m.Departure = &p
	}

	if err := pair.To.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("arrival marker: %w", err))
	} else {
		p := geospatial.Project(pair.To, baseRadius*MarkerOffset)
		m.Arrival = &p
	}

	if m.Departure != nil && m.Arrival != nil {
		dir := m.Departure.Mid(*m.Arrival).Normalize()
		// Antipodal airports have no meaningful midpoint direction.
		if dir != (domain.Point3D{}) {
			p := dir.Scale(baseRadius * DirectionLift)
			m.Direction = &p
		}
	}

	return m, errors.Join(errs...)
}
