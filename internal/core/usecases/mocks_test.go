package usecases_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/scene"
)

var (
	jfk = domain.GeoPoint{Lat: 40.6413, Lng: -73.7781, City: "New York", Airport: "JFK", Code: "JFK"}
	lhr = domain.GeoPoint{Lat: 51.4700, Lng: -0.4543, City: "London", Airport: "Heathrow", Code: "LHR"}
	lax = domain.GeoPoint{Lat: 34.0522, Lng: -118.2437, City: "Los Angeles", Airport: "LAX", Code: "LAX"}
)

func newComposer() *scene.Composer {
	return scene.NewComposer(scene.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- Mock FlightRepository ---

type mockFlightRepo struct {
	findFlightFn func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error)
	listFn       func(ctx context.Context) ([]string, error)
}

func (m *mockFlightRepo) FindFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	if m.findFlightFn != nil {
		return m.findFlightFn(ctx, q)
	}
	return nil, domain.ErrFlightNotFound
}

func (m *mockFlightRepo) ListFlightNumbers(ctx context.Context) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockFlightRepo) Upsert(ctx context.Context, pair *domain.FlightPair) error { return nil }

// --- Mock FlightProvider ---

type mockProvider struct {
	fetchFn func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error)
	calls   int
}

func (m *mockProvider) FetchFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, q)
	}
	return nil, domain.ErrFlightNotFound
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	frames   []domain.Frame
	selected []string
	cleared  int
}

func (m *mockPublisher) PublishSceneUpdate(ctx context.Context, frame domain.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame)
	return nil
}

func (m *mockPublisher) PublishFlightSelected(ctx context.Context, pair *domain.FlightPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = append(m.selected, pair.FlightNumber)
	return nil
}

func (m *mockPublisher) PublishFlightCleared(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	return nil
}

// --- Mock BoundarySource ---

type mockBoundarySource struct {
	name   string
	loadFn func(ctx context.Context) ([]domain.GeoLineString, error)
}

func (m *mockBoundarySource) Name() string { return m.name }

func (m *mockBoundarySource) LoadBoundaries(ctx context.Context) ([]domain.GeoLineString, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return nil, nil
}
