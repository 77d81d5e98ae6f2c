package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/usecases"
)

func TestFlightService_Lookup_Catalog(t *testing.T) {
	repo := &mockFlightRepo{
		findFlightFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			if q.FlightNumber != "BA123" || q.Date != "2024-07-11" {
				t.Errorf("unexpected query %+v", q)
			}
			return &domain.FlightPair{From: lhr, To: jfk, Source: domain.SourceMock}, nil
		},
	}
	provider := &mockProvider{}

	svc := usecases.NewFlightService(repo, provider, nil)
	pair, err := svc.Lookup(context.Background(), " ba123", "2024-07-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.From.Code != "LHR" || pair.To.Code != "JFK" {
		t.Errorf("expected LHR->JFK, got %s->%s", pair.From.Code, pair.To.Code)
	}
	if pair.FlightNumber != "BA123" {
		t.Errorf("expected normalized flight number BA123, got %s", pair.FlightNumber)
	}
	if pair.Source != domain.SourceMock {
		t.Errorf("expected source mock, got %s", pair.Source)
	}
	if provider.calls != 0 {
		t.Errorf("expected provider not to be called, got %d calls", provider.calls)
	}
}

func TestFlightService_Lookup_FallsBackToProvider(t *testing.T) {
	provider := &mockProvider{
		fetchFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			return &domain.FlightPair{From: jfk, To: lax, Source: domain.SourceAPI}, nil
		},
	}

	svc := usecases.NewFlightService(&mockFlightRepo{}, provider, nil)
	pair, err := svc.Lookup(context.Background(), "AA1", "2024-07-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Source != domain.SourceAPI {
		t.Errorf("expected source api, got %s", pair.Source)
	}
	if pair.Date != "2024-07-12" {
		t.Errorf("expected date to be set, got %q", pair.Date)
	}
}

func TestFlightService_Lookup_NotFoundListsCatalog(t *testing.T) {
	repo := &mockFlightRepo{
		listFn: func(ctx context.Context) ([]string, error) {
			return []string{"AA1234", "BA123"}, nil
		},
	}

	svc := usecases.NewFlightService(repo, &mockProvider{}, nil)
	_, err := svc.Lookup(context.Background(), "ZZ999", "2024-07-11")
	if !errors.Is(err, domain.ErrFlightNotFound) {
		t.Fatalf("expected ErrFlightNotFound, got %v", err)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if len(nf.Available) != 2 {
		t.Errorf("expected 2 available flights, got %v", nf.Available)
	}
}

func TestFlightService_Lookup_BackendErrorsStillNotFound(t *testing.T) {
	repo := &mockFlightRepo{
		findFlightFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			return nil, errors.New("connection refused")
		},
	}
	provider := &mockProvider{
		fetchFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			return nil, errors.New("timeout")
		},
	}

	svc := usecases.NewFlightService(repo, provider, nil)
	_, err := svc.Lookup(context.Background(), "BA123", "2024-07-11")
	if !errors.Is(err, domain.ErrFlightNotFound) {
		t.Errorf("expected ErrFlightNotFound, got %v", err)
	}
}

func TestFlightService_Lookup_InvalidInput(t *testing.T) {
	called := false
	repo := &mockFlightRepo{
		findFlightFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			called = true
			return nil, domain.ErrFlightNotFound
		},
	}

	svc := usecases.NewFlightService(repo, nil, nil)
	_, err := svc.Lookup(context.Background(), "", "2024-07-11")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Error("expected repository not to be queried")
	}
}

func TestFlightService_Lookup_UsesCache(t *testing.T) {
	hits := 0
	repo := &mockFlightRepo{
		findFlightFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
			hits++
			return &domain.FlightPair{From: jfk, To: lax, Source: domain.SourceMock}, nil
		},
	}
	cache := newMockCache()

	svc := usecases.NewFlightService(repo, nil, cache)
	if _, err := svc.Lookup(context.Background(), "AA1234", "2024-07-11"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pair, err := svc.Lookup(context.Background(), "aa1234", "2024-07-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 repository hit, got %d", hits)
	}
	if pair.Source != domain.SourceCache {
		t.Errorf("expected source cache, got %s", pair.Source)
	}
	if pair.To.Code != "LAX" {
		t.Errorf("expected LAX, got %s", pair.To.Code)
	}
}
