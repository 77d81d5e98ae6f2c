package scene

import (
	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

// ProjectBorders turns boundary lines into polylines just above the globe.
// A malformed vertex ends the current polyline and the next valid vertex
// starts a new one; runs shorter than two points are dropped. The second
// return value counts skipped vertices.
func ProjectBorders(lines []domain.GeoLineString, baseRadius float64) ([]domain.Polyline, int) {
	r := baseRadius * BorderOffset
	var (
		out     []domain.Polyline
		skipped int
	)

	flush := func(run domain.Polyline) {
		if len(run) >= 2 {
			out = append(out, run)
		}
	}

	for _, line := range lines {
		var run domain.Polyline
		for _, v := range line.Coordinates {
			if v.Validate() != nil {
				skipped++
				flush(run)
				run = nil
				continue
			}
			run = append(run, geospatial.Project(v, r))
		}
		flush(run)
	}
	return out, skipped
}
