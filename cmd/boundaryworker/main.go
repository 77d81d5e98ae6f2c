package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/flightglobe/internal/adapters/geojson"
	natsadapter "github.com/samirrijal/flightglobe/internal/adapters/nats"
	"github.com/samirrijal/flightglobe/internal/adapters/valkey"
	"github.com/samirrijal/flightglobe/internal/pkg/config"
	"github.com/samirrijal/flightglobe/internal/pkg/logging"
	"github.com/samirrijal/flightglobe/internal/workflows"
)

const workflowID = "boundary-refresh"

func main() {
	cfg, err := config.Load("flightglobe-boundaryworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Boundaries.URL == "" {
		log.Fatal("boundaries.url is required for the refresh worker")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	acts := &workflows.BoundaryActivities{
		Fetcher: geojson.NewHTTPSource(cfg.Boundaries.URL, time.Minute),
		Cache:   cache,
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, replicas reload borders on restart", "error", err)
	} else {
		defer pub.Close()
		acts.Announcer = pub
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BoundaryRefreshWorkflow)
	w.RegisterActivity(acts)

	// An already running cron execution is reused.
	opts := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: cfg.Temporal.TaskQueue,
	}
	if cfg.Boundaries.RefreshInterval > 0 {
		opts.CronSchedule = "@every " + cfg.Boundaries.RefreshInterval.String()
	}
	run, err := c.ExecuteWorkflow(context.Background(), opts, workflows.BoundaryRefreshWorkflow,
		workflows.BoundaryRefreshInput{CacheKey: cfg.Boundaries.CacheKey})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("boundary refresh scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "every", cfg.Boundaries.RefreshInterval)

	slog.Info("boundary worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
