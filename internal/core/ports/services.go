package ports

import (
	"context"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// FlightProvider resolves flights from an external schedule API.
// It returns domain.ErrFlightNotFound when the API has no usable result.
type FlightProvider interface {
	FetchFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error)
}

// EventPublisher publishes scene events to a message broker.
type EventPublisher interface {
	PublishSceneUpdate(ctx context.Context, frame domain.Frame) error
	PublishFlightSelected(ctx context.Context, pair *domain.FlightPair) error
	PublishFlightCleared(ctx context.Context) error
}

// FrameFeed delivers scene frames to a consumer until the returned stop
// function is called.
type FrameFeed interface {
	SubscribeFrames(handler func(frame domain.Frame)) (stop func(), err error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// BoundarySource loads country-border lines.
type BoundarySource interface {
	Name() string
	LoadBoundaries(ctx context.Context) ([]domain.GeoLineString, error)
}
