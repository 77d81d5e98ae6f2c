package ports

import (
	"context"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// FlightRepository is the flight catalog: flight number + date to an
// airport pair. FindFlight returns domain.ErrFlightNotFound when the
// catalog has no entry.
type FlightRepository interface {
	FindFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error)
	ListFlightNumbers(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, pair *domain.FlightPair) error
}
