package http

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

// maxArcSegments bounds stateless arc requests.
const maxArcSegments = 1000

// flightRequest is the body of POST /v1/scene/flight.
type flightRequest struct {
	FlightNumber string `json:"flightNumber"`
	Date         string `json:"date"`
}

// ArcResponse is a stateless arc computation.
type ArcResponse struct {
	From       domain.GeoPoint  `json:"from"`
	To         domain.GeoPoint  `json:"to"`
	Radius     float64          `json:"radius"`
	Segments   int              `json:"segments"`
	Points     []domain.Point3D `json:"points"`
	DistanceKm float64          `json:"distance_km"`
}

// ProjectResponse is a stateless projection.
type ProjectResponse struct {
	Lat    float64        `json:"lat"`
	Lng    float64        `json:"lng"`
	Radius float64        `json:"radius"`
	Point  domain.Point3D `json:"point"`
}

// LookupFlightHandler resolves a flight without touching the scene.
func LookupFlightHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		num := c.Query("flightNumber")
		date := c.Query("date")
		if num == "" || date == "" {
			return errBadRequest(c, "flightNumber and date are required")
		}

		pair, err := deps.Flights.Lookup(c.UserContext(), num, date)
		if err != nil {
			return errFromLookup(c, err)
		}
		return c.JSON(pair)
	}
}

// LegacyFlightDetailsHandler serves the pre-v1 lookup path. Only GET is
// accepted.
func LegacyFlightDetailsHandler(deps *Dependencies) fiber.Handler {
	lookup := LookupFlightHandler(deps)
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return errMethodNotAllowed(c, fiber.MethodGet)
		}
		return lookup(c)
	}
}

// FlightCatalogHandler lists known flight numbers.
func FlightCatalogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nums, err := deps.Flights.Catalog(c.UserContext())
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("list flights failed", "error", err)
			return errInternal(c, "could not list flights")
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(nums)
		page := []string{}
		if offset < total {
			end := offset + limit
			if end > total {
				end = total
			}
			page = nums[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetSceneHandler returns the current frame.
func GetSceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(deps.Scene.Frame())
	}
}

// SelectFlightHandler looks a flight up and shows it on the globe. On any
// failure the scene is cleared before the error is returned.
func SelectFlightHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req flightRequest
		if err := c.BodyParser(&req); err != nil {
			deps.Scene.ClearFlight(c.UserContext())
			return errBadRequest(c, "invalid request body")
		}
		if req.FlightNumber == "" || req.Date == "" {
			deps.Scene.ClearFlight(c.UserContext())
			return errBadRequest(c, "flightNumber and date are required")
		}

		frame, err := deps.Scene.SelectFlight(c.UserContext(), req.FlightNumber, req.Date)
		if err != nil {
			return errFromLookup(c, err)
		}
		return c.JSON(frame)
	}
}

// ClearFlightHandler removes the flight overlay.
func ClearFlightHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Scene.ClearFlight(c.UserContext()))
	}
}

// ArcHandler computes an arc between two coordinates without changing the scene.
func ArcHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			from, to domain.GeoPoint
			err      error
		)
		if from.Lat, err = requiredFloat(c, "from_lat"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if from.Lng, err = requiredFloat(c, "from_lng"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if to.Lat, err = requiredFloat(c, "to_lat"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if to.Lng, err = requiredFloat(c, "to_lng"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := from.Validate(); err != nil {
			return errBadRequest(c, "from: "+err.Error())
		}
		if err := to.Validate(); err != nil {
			return errBadRequest(c, "to: "+err.Error())
		}

		radius, err := radiusParam(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		segments := c.QueryInt("segments", geospatial.DefaultSegments)
		if segments < 1 {
			segments = 1
		}
		if segments > maxArcSegments {
			return errBadRequest(c, "segments must be at most "+strconv.Itoa(maxArcSegments))
		}

		return c.JSON(ArcResponse{
			From:       from,
			To:         to,
			Radius:     radius,
			Segments:   segments,
			Points:     geospatial.GenerateArc(from, to, radius, segments),
			DistanceKm: geospatial.Haversine(from.Lat, from.Lng, to.Lat, to.Lng),
		})
	}
}

// ProjectHandler maps one coordinate onto the sphere.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			p   domain.GeoPoint
			err error
		)
		if p.Lat, err = requiredFloat(c, "lat"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if p.Lng, err = requiredFloat(c, "lng"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := p.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}
		radius, err := radiusParam(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.JSON(ProjectResponse{
			Lat:    p.Lat,
			Lng:    p.Lng,
			Radius: radius,
			Point:  geospatial.Project(p, radius),
		})
	}
}

func requiredFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a finite number")
	}
	return v, nil
}

// radiusParam defaults to the scene's base radius.
func radiusParam(c *fiber.Ctx, deps *Dependencies) (float64, error) {
	if c.Query("radius") == "" {
		return deps.Scene.Config().BaseRadius, nil
	}
	r, err := requiredFloat(c, "radius")
	if err != nil {
		return 0, err
	}
	if r <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "radius must be positive")
	}
	return r, nil
}
