package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/flightglobe/internal/adapters/aviationstack"
	"github.com/samirrijal/flightglobe/internal/adapters/geojson"
	"github.com/samirrijal/flightglobe/internal/adapters/http"
	"github.com/samirrijal/flightglobe/internal/adapters/memory"
	natsadapter "github.com/samirrijal/flightglobe/internal/adapters/nats"
	"github.com/samirrijal/flightglobe/internal/adapters/postgres"
	"github.com/samirrijal/flightglobe/internal/adapters/valkey"
	"github.com/samirrijal/flightglobe/internal/core/ports"
	"github.com/samirrijal/flightglobe/internal/core/scene"
	"github.com/samirrijal/flightglobe/internal/core/usecases"
	"github.com/samirrijal/flightglobe/internal/pkg/config"
	"github.com/samirrijal/flightglobe/internal/pkg/logging"
	"github.com/samirrijal/flightglobe/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("flightglobe-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Flight catalog: Postgres when enabled, the built-in table otherwise
	var flights ports.FlightRepository = memory.NewDefaultFlightRepo()
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		flights = postgres.NewFlightRepo(db)
		deps.DB = db
	}

	// External schedule API
	var provider ports.FlightProvider
	if cfg.Aviationstack.Enabled() {
		provider = aviationstack.New(
			cfg.Aviationstack.BaseURL,
			cfg.Aviationstack.AccessKey,
			time.Duration(cfg.Aviationstack.Timeout)*time.Second,
		)
	} else {
		slog.Info("aviationstack access key not set, external lookups disabled")
	}

	// Cache: Valkey, or a per-process LRU when it is unreachable
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, using in-process cache", "error", err)
		cache = memory.NewLRUCache(1024, time.Hour)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	// Scene
	composer := scene.NewComposer(scene.Config{
		BaseRadius: cfg.Scene.BaseRadius,
		Segments:   cfg.Scene.ArcSegments,
	}, slog.Default())

	flightSvc := usecases.NewFlightService(flights, provider, cache)
	sceneSvc := usecases.NewSceneService(flightSvc, composer, publisher)
	defer sceneSvc.Close()

	sources := []ports.BoundarySource{geojson.CacheSource{Cache: cache, Key: cfg.Boundaries.CacheKey}}
	if cfg.Boundaries.Path != "" {
		sources = append(sources, geojson.FileSource{Path: cfg.Boundaries.Path})
	}
	if cfg.Boundaries.URL != "" {
		sources = append(sources, geojson.NewHTTPSource(cfg.Boundaries.URL, 30*time.Second))
	}
	boundarySvc := usecases.NewBoundaryService(composer, sources...)

	// The globe renders without borders if no dataset loads.
	if _, err := boundarySvc.Load(ctx); err != nil {
		slog.Warn("border overlay unavailable", "error", err)
	}

	deps.Flights = flightSvc
	deps.Scene = sceneSvc
	deps.Boundaries = boundarySvc
	deps.Feed = sceneSvc

	if natsConn != nil && publisher != nil {
		deps.Feed = natsadapter.NewFrameFeed(natsConn)
		stop, err := natsadapter.OnBoundariesRefreshed(natsConn, func() {
			if _, err := boundarySvc.Load(ctx); err != nil {
				slog.Warn("border reload failed", "error", err)
			}
		})
		if err != nil {
			slog.Warn("boundary refresh subscription failed", "error", err)
		} else {
			defer stop()
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Flight Globe API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
