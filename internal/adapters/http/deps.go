package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightglobe/internal/adapters/postgres"
	"github.com/samirrijal/flightglobe/internal/adapters/valkey"
	"github.com/samirrijal/flightglobe/internal/core/ports"
	"github.com/samirrijal/flightglobe/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS, DB and Cache are optional and only used for readiness.
type Dependencies struct {
	Flights    *usecases.FlightService
	Scene      *usecases.SceneService
	Boundaries *usecases.BoundaryService
	Feed       ports.FrameFeed
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
