package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFlightNotFound means no departure/arrival pair exists for the query.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrMalformedCoordinate marks a NaN, infinite or out-of-range lat/lng.
	ErrMalformedCoordinate = errors.New("malformed coordinate")

	// ErrBoundaryUnavailable means no country-border dataset could be loaded.
	ErrBoundaryUnavailable = errors.New("boundary dataset unavailable")

	// ErrInvalidInput is returned for missing or unparsable request fields.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError is an ErrFlightNotFound that also lists flights the
// catalog does know about, so callers can suggest alternatives.
type NotFoundError struct {
	FlightNumber string
	Date         string
	Available    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("flight %s not found for %s", e.FlightNumber, e.Date)
}

func (e *NotFoundError) Unwrap() error { return ErrFlightNotFound }
