// Package memory holds the built-in flight catalog used when no database
// is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// FlightRepo implements ports.FlightRepository over an in-memory table
// keyed by flight number and date.
type FlightRepo struct {
	mu      sync.RWMutex
	flights map[string]map[string]domain.FlightPair
}

// NewFlightRepo creates a catalog seeded with pairs.
func NewFlightRepo(pairs ...domain.FlightPair) *FlightRepo {
	r := &FlightRepo{flights: make(map[string]map[string]domain.FlightPair)}
	for _, p := range pairs {
		r.put(p)
	}
	return r
}

// NewDefaultFlightRepo creates a catalog holding DefaultFlights.
func NewDefaultFlightRepo() *FlightRepo {
	return NewFlightRepo(DefaultFlights()...)
}

func (r *FlightRepo) FindFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.flights[strings.ToUpper(q.FlightNumber)][q.Date]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	p.Source = domain.SourceMock
	return &p, nil
}

func (r *FlightRepo) ListFlightNumbers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.flights))
	for num := range r.flights {
		out = append(out, num)
	}
	sort.Strings(out)
	return out, nil
}

func (r *FlightRepo) Upsert(ctx context.Context, pair *domain.FlightPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(*pair)
	return nil
}

func (r *FlightRepo) put(p domain.FlightPair) {
	num := strings.ToUpper(p.FlightNumber)
	p.FlightNumber = num
	if r.flights[num] == nil {
		r.flights[num] = make(map[string]domain.FlightPair)
	}
	r.flights[num][p.Date] = p
}

var (
	airportJFK = domain.GeoPoint{Lat: 40.6413, Lng: -73.7781, City: "New York", Airport: "JFK", Code: "JFK"}
	airportLAX = domain.GeoPoint{Lat: 34.0522, Lng: -118.2437, City: "Los Angeles", Airport: "LAX", Code: "LAX"}
	airportLHR = domain.GeoPoint{Lat: 51.4700, Lng: -0.4543, City: "London", Airport: "Heathrow", Code: "LHR"}
	airportFRA = domain.GeoPoint{Lat: 50.0379, Lng: 8.5622, City: "Frankfurt", Airport: "Frankfurt", Code: "FRA"}
	airportHND = domain.GeoPoint{Lat: 35.6762, Lng: 139.6503, City: "Tokyo", Airport: "Haneda", Code: "HND"}
	airportSYD = domain.GeoPoint{Lat: -33.9399, Lng: 151.1753, City: "Sydney", Airport: "Kingsford Smith", Code: "SYD"}
	airportDXB = domain.GeoPoint{Lat: 25.2532, Lng: 55.3657, City: "Dubai", Airport: "Dubai International", Code: "DXB"}
)

// DefaultFlights is the demo catalog, all dated 2024-07-11.
func DefaultFlights() []domain.FlightPair {
	const date = "2024-07-11"
	return []domain.FlightPair{
		{FlightNumber: "AA1234", Date: date, From: airportJFK, To: airportLAX},
		{FlightNumber: "BA123", Date: date, From: airportLHR, To: airportJFK},
		{FlightNumber: "LH456", Date: date, From: airportFRA, To: airportHND},
		{FlightNumber: "QF1", Date: date, From: airportSYD, To: airportLHR},
		{FlightNumber: "EK215", Date: date, From: airportDXB, To: airportJFK},
	}
}
