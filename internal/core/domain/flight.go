package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date accepted for flight lookups.
const DateLayout = "2006-01-02"

// FlightSource says which lookup backend resolved a flight.
type FlightSource string

const (
	SourceMock     FlightSource = "mock"
	SourceDatabase FlightSource = "database"
	SourceAPI      FlightSource = "api"
	SourceCache    FlightSource = "cache"
)

// FlightPair is a resolved flight: both endpoints are always present.
type FlightPair struct {
	From         GeoPoint     `json:"from"`
	To           GeoPoint     `json:"to"`
	FlightNumber string       `json:"flightNumber"`
	Date         string       `json:"date"`
	Source       FlightSource `json:"source,omitempty"`
}

// Validate checks both endpoints and joins their errors.
func (p FlightPair) Validate() error {
	var errs []error
	if err := p.From.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("from: %w", err))
	}
	if err := p.To.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("to: %w", err))
	}
	return errors.Join(errs...)
}

// FlightQuery identifies a flight by number and calendar date.
type FlightQuery struct {
	FlightNumber string `json:"flightNumber"`
	Date         string `json:"date"`
}

// Normalize trims and upper-cases the flight number and checks the date.
func (q FlightQuery) Normalize() (FlightQuery, error) {
	number := strings.ToUpper(strings.TrimSpace(q.FlightNumber))
	date := strings.TrimSpace(q.Date)
	if number == "" || date == "" {
		return FlightQuery{}, fmt.Errorf("%w: flight number and date are required", ErrInvalidInput)
	}
	if len(number) > 10 || strings.ContainsAny(number, " \t/:") {
		return FlightQuery{}, fmt.Errorf("%w: flight number %q is not a valid IATA flight", ErrInvalidInput, number)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return FlightQuery{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	return FlightQuery{FlightNumber: number, Date: date}, nil
}

// CacheKey returns the lookup cache key for a normalized query.
func (q FlightQuery) CacheKey() string {
	return "flights:lookup:" + q.FlightNumber + ":" + q.Date
}
