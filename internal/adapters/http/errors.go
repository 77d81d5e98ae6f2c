package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// FlightNotFoundError is the 404 body for an unknown flight. It lists the
// flights the catalog does know.
type FlightNotFoundError struct {
	APIError
	AvailableFlights []string `json:"available_flights"`
}

func requestID(c *fiber.Ctx) string {
	reqID, _ := c.Locals("requestid").(string)
	return reqID
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errMethodNotAllowed returns a 405 error with an Allow header.
func errMethodNotAllowed(c *fiber.Ctx, allow ...string) error {
	for _, m := range allow {
		c.Append(fiber.HeaderAllow, m)
	}
	return newError(c, fiber.StatusMethodNotAllowed, "method_not_allowed", "method "+c.Method()+" not allowed")
}

// errFlightNotFound returns a 404 listing the known flights.
func errFlightNotFound(c *fiber.Ctx, nf *domain.NotFoundError) error {
	available := nf.Available
	if available == nil {
		available = []string{}
	}
	return c.Status(fiber.StatusNotFound).JSON(FlightNotFoundError{
		APIError: APIError{
			Status:    fiber.StatusNotFound,
			Code:      "flight_not_found",
			Message:   nf.Error(),
			RequestID: requestID(c),
		},
		AvailableFlights: available,
	})
}

// errFromLookup maps a lookup error to its HTTP response.
func errFromLookup(c *fiber.Ctx, err error) error {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		return errFlightNotFound(c, nf)
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrFlightNotFound):
		return errNotFound(c, err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("flight lookup failed", "error", err)
		return errInternal(c, "flight lookup failed")
	}
}
