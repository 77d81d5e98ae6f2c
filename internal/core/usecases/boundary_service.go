package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/ports"
	"github.com/samirrijal/flightglobe/internal/core/scene"
	"github.com/samirrijal/flightglobe/internal/pkg/metrics"
)

// BoundaryService loads the country-border overlay into the scene. Sources
// are tried in order; the first that loads wins.
type BoundaryService struct {
	sources  []ports.BoundarySource
	composer *scene.Composer
}

// NewBoundaryService creates a new BoundaryService.
func NewBoundaryService(composer *scene.Composer, sources ...ports.BoundarySource) *BoundaryService {
	return &BoundaryService{sources: sources, composer: composer}
}

// Load projects the first available dataset onto the globe and returns the
// number of polylines. When every source fails the overlay is left as it
// was and the error wraps domain.ErrBoundaryUnavailable; the globe and any
// flight path are unaffected.
func (s *BoundaryService) Load(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "BoundaryService.Load")
	defer span.End()

	var errs []error
	for _, src := range s.sources {
		lines, err := src.LoadBoundaries(ctx)
		if err == nil && len(lines) == 0 {
			err = errors.New("dataset has no line features")
		}
		if err != nil {
			metrics.BoundaryLoads.WithLabelValues(src.Name(), "error").Inc()
			slog.WarnContext(ctx, "boundary source failed", "source", src.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		polys, skipped := scene.ProjectBorders(lines, s.composer.Config().BaseRadius)
		if skipped > 0 {
			metrics.MalformedCoordinates.WithLabelValues("border").Add(float64(skipped))
			slog.WarnContext(ctx, "skipped malformed border vertices", "source", src.Name(), "skipped", skipped)
		}
		s.composer.SetBorders(polys)
		metrics.BoundaryLoads.WithLabelValues(src.Name(), "ok").Inc()
		slog.InfoContext(ctx, "border overlay loaded", "source", src.Name(), "polylines", len(polys))
		return len(polys), nil
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no boundary sources configured"))
	}
	err := fmt.Errorf("%w: %w", domain.ErrBoundaryUnavailable, errors.Join(errs...))
	span.RecordError(err)
	return 0, err
}
