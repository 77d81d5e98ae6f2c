package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/ports"
	"github.com/samirrijal/flightglobe/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/flightglobe/internal/core/usecases")

// lookupCacheTTL keeps resolved flights for 10 minutes.
const lookupCacheTTL = 600

// FlightService resolves a flight number + date to an airport pair.
// Order: cache, catalog repository, external provider.
type FlightService struct {
	flights  ports.FlightRepository
	provider ports.FlightProvider
	cache    ports.CacheService
}

// NewFlightService creates a new FlightService. provider and cache may be nil.
func NewFlightService(flights ports.FlightRepository, provider ports.FlightProvider, cache ports.CacheService) *FlightService {
	return &FlightService{flights: flights, provider: provider, cache: cache}
}

// Lookup returns the flight pair, a *domain.NotFoundError when no backend
// knows the flight, or a domain.ErrInvalidInput error.
func (s *FlightService) Lookup(ctx context.Context, flightNumber, date string) (*domain.FlightPair, error) {
	q, err := domain.FlightQuery{FlightNumber: flightNumber, Date: date}.Normalize()
	if err != nil {
		metrics.FlightLookups.WithLabelValues("none", "invalid").Inc()
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "FlightService.Lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("flight.number", q.FlightNumber),
		attribute.String("flight.date", q.Date),
	)

	if pair, ok := s.fromCache(ctx, q); ok {
		span.SetAttributes(attribute.String("flight.source", string(pair.Source)))
		metrics.FlightLookups.WithLabelValues(string(domain.SourceCache), "found").Inc()
		return pair, nil
	}

	var backendErrs []error

	pair, err := s.flights.FindFlight(ctx, q)
	switch {
	case err == nil:
		return s.found(ctx, q, pair), nil
	case !errors.Is(err, domain.ErrFlightNotFound):
		slog.WarnContext(ctx, "flight catalog lookup failed", "flight", q.FlightNumber, "error", err)
		backendErrs = append(backendErrs, fmt.Errorf("catalog: %w", err))
	}

	if s.provider != nil {
		pair, err := s.provider.FetchFlight(ctx, q)
		switch {
		case err == nil:
			return s.found(ctx, q, pair), nil
		case !errors.Is(err, domain.ErrFlightNotFound):
			slog.WarnContext(ctx, "flight provider lookup failed", "flight", q.FlightNumber, "error", err)
			backendErrs = append(backendErrs, fmt.Errorf("provider: %w", err))
		}
	}

	if len(backendErrs) > 0 {
		span.RecordError(errors.Join(backendErrs...))
	}
	span.SetStatus(codes.Error, "flight not found")
	metrics.FlightLookups.WithLabelValues("none", "not_found").Inc()

	available, _ := s.Catalog(ctx)
	return nil, &domain.NotFoundError{FlightNumber: q.FlightNumber, Date: q.Date, Available: available}
}

// Catalog lists the flight numbers the repository knows about.
func (s *FlightService) Catalog(ctx context.Context) ([]string, error) {
	return s.flights.ListFlightNumbers(ctx)
}

func (s *FlightService) found(ctx context.Context, q domain.FlightQuery, pair *domain.FlightPair) *domain.FlightPair {
	pair.FlightNumber = q.FlightNumber
	pair.Date = q.Date
	metrics.FlightLookups.WithLabelValues(string(pair.Source), "found").Inc()

	if s.cache != nil {
		if data, err := json.Marshal(pair); err == nil {
			_ = s.cache.Set(ctx, q.CacheKey(), data, lookupCacheTTL)
		}
	}
	return pair
}

func (s *FlightService) fromCache(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, q.CacheKey())
	if err != nil {
		metrics.CacheMisses.WithLabelValues("flight_lookup").Inc()
		return nil, false
	}
	var pair domain.FlightPair
	if err := json.Unmarshal(data, &pair); err != nil {
		metrics.CacheMisses.WithLabelValues("flight_lookup").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("flight_lookup").Inc()
	pair.Source = domain.SourceCache
	return &pair, true
}
