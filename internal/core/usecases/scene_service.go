package usecases

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/ports"
	"github.com/samirrijal/flightglobe/internal/core/scene"
	"github.com/samirrijal/flightglobe/internal/pkg/metrics"
)

// SceneService connects flight lookups to the scene and broadcasts every
// new frame.
type SceneService struct {
	flights   *FlightService
	composer  *scene.Composer
	publisher ports.EventPublisher

	stopPublishing func()
}

// NewSceneService creates a new SceneService. publisher may be nil.
func NewSceneService(flights *FlightService, composer *scene.Composer, publisher ports.EventPublisher) *SceneService {
	s := &SceneService{flights: flights, composer: composer, publisher: publisher}
	s.stopPublishing = composer.OnChange(s.broadcast)
	return s
}

// Frame returns the current scene.
func (s *SceneService) Frame() domain.Frame {
	return s.composer.Frame()
}

// Config returns the scene geometry configuration.
func (s *SceneService) Config() scene.Config {
	return s.composer.Config()
}

// SelectFlight looks a flight up and makes it the scene's flight. Any
// lookup failure clears the scene so stale geometry never outlives a
// failed search; the error is returned alongside the cleared frame.
func (s *SceneService) SelectFlight(ctx context.Context, flightNumber, date string) (domain.Frame, error) {
	pair, err := s.flights.Lookup(ctx, flightNumber, date)
	if err != nil {
		return s.ClearFlight(ctx), err
	}

	_, span := tracer.Start(ctx, "SceneService.Recompute")
	frame := s.composer.SetFlightPair(*pair)
	span.SetAttributes(
		attribute.Int64("scene.generation", int64(frame.Generation)),
		attribute.Int("scene.arc_points", len(frame.Arc)),
	)
	span.End()

	metrics.SceneChanges.WithLabelValues("selected").Inc()
	if len(frame.Warnings) > 0 {
		metrics.MalformedCoordinates.WithLabelValues("flight").Inc()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishFlightSelected(ctx, pair); err != nil {
			slog.WarnContext(ctx, "publish flight selected failed", "error", err)
		}
	}
	return frame, nil
}

// ClearFlight removes the flight overlay.
func (s *SceneService) ClearFlight(ctx context.Context) domain.Frame {
	frame := s.composer.Clear()
	metrics.SceneChanges.WithLabelValues("cleared").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishFlightCleared(ctx); err != nil {
			slog.WarnContext(ctx, "publish flight cleared failed", "error", err)
		}
	}
	return frame
}

// SubscribeFrames delivers every new frame in-process. It serves the
// WebSocket stream when no broker is available.
func (s *SceneService) SubscribeFrames(handler func(domain.Frame)) (func(), error) {
	return s.composer.OnChange(handler), nil
}

// Close stops broadcasting frames.
func (s *SceneService) Close() {
	if s.stopPublishing != nil {
		s.stopPublishing()
	}
}

func (s *SceneService) broadcast(frame domain.Frame) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSceneUpdate(context.Background(), frame); err != nil {
		slog.Debug("publish scene update failed", "generation", frame.Generation, "error", err)
	}
}
