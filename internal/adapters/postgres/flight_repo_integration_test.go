//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/samirrijal/flightglobe/internal/adapters/memory"
	"github.com/samirrijal/flightglobe/internal/adapters/postgres"
	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/config"
)

// setupTestDB connects to the test database and applies the flights schema.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, err := config.Load("flightglobe-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../../migrations/001_flights.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE flights`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestFlightRepo_Integration_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewFlightRepo(db)
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, memory.DefaultFlights()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pair, err := repo.FindFlight(ctx, domain.FlightQuery{FlightNumber: "QF1", Date: "2024-07-11"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Source != domain.SourceDatabase {
		t.Errorf("expected source database, got %s", pair.Source)
	}
	if pair.From.Code != "SYD" || pair.To.Code != "LHR" {
		t.Errorf("expected SYD-LHR, got %s-%s", pair.From.Code, pair.To.Code)
	}

	nums, err := repo.ListFlightNumbers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nums) != 5 || nums[0] != "AA1234" {
		t.Errorf("unexpected catalog %v", nums)
	}
}

func TestFlightRepo_Integration_UpsertReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewFlightRepo(db)
	ctx := context.Background()

	pair := memory.DefaultFlights()[0]
	if err := repo.Upsert(ctx, &pair); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pair.To = domain.GeoPoint{Lat: 37.6213, Lng: -122.379, Code: "SFO"}
	if err := repo.Upsert(ctx, &pair); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.FindFlight(ctx, domain.FlightQuery{FlightNumber: pair.FlightNumber, Date: pair.Date})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.To.Code != "SFO" {
		t.Errorf("expected SFO after upsert, got %s", got.To.Code)
	}
}

func TestFlightRepo_Integration_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewFlightRepo(db)

	_, err := repo.FindFlight(context.Background(), domain.FlightQuery{FlightNumber: "ZZ999", Date: "2024-07-11"})
	if !errors.Is(err, domain.ErrFlightNotFound) {
		t.Fatalf("expected ErrFlightNotFound, got %v", err)
	}
}

func TestFlightRepo_Integration_RejectsMalformed(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewFlightRepo(db)

	bad := domain.FlightPair{FlightNumber: "XX1", Date: "2024-07-11", From: domain.GeoPoint{Lat: 95}, To: domain.GeoPoint{}}
	if err := repo.Upsert(context.Background(), &bad); !errors.Is(err, domain.ErrMalformedCoordinate) {
		t.Fatalf("expected ErrMalformedCoordinate, got %v", err)
	}
}
