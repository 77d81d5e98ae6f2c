package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/samirrijal/flightglobe/internal/adapters/memory"
	"github.com/samirrijal/flightglobe/internal/adapters/postgres"
	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/config"
)

// Manifest is a flight catalog export.
type Manifest struct {
	Source  string              `json:"source"`
	Flights []domain.FlightPair `json:"flights"`
}

// batchSize caps the rows sent in one pgx batch.
const batchSize = 500

func main() {
	cfg, err := config.Load("flightglobe-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Load manifest; "--seed" loads the built-in demo catalog instead.
	manifestPath := "data/flights.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	var flights []domain.FlightPair
	if manifestPath == "--seed" {
		flights = memory.DefaultFlights()
		log.Printf("Flight Ingestor: %d demo flights", len(flights))
	} else {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			log.Fatalf("read manifest: %v", err)
		}
		var skipped []string
		var source string
		flights, skipped, source, err = parseManifest(data)
		if err != nil {
			log.Fatalf("parse manifest: %v", err)
		}
		for _, s := range skipped {
			log.Printf("SKIP %s", s)
		}
		log.Printf("Flight Ingestor: %d flights from %s (%d skipped)", len(flights), source, len(skipped))
	}

	repo := postgres.NewFlightRepo(db)
	for start := 0; start < len(flights); start += batchSize {
		end := min(start+batchSize, len(flights))
		if err := repo.UpsertBatch(ctx, flights[start:end]); err != nil {
			log.Fatalf("upsert flights %d-%d: %v", start, end, err)
		}
	}

	log.Println("ingestion complete")
}

// parseManifest decodes a manifest and separates out flights that cannot be
// stored: missing identity, a bad date or malformed coordinates.
func parseManifest(data []byte) (valid []domain.FlightPair, skipped []string, source string, err error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, "", err
	}
	for i, f := range m.Flights {
		q, err := domain.FlightQuery{FlightNumber: f.FlightNumber, Date: f.Date}.Normalize()
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("#%d %s: %v", i, f.FlightNumber, err))
			continue
		}
		f.FlightNumber, f.Date = q.FlightNumber, q.Date
		valid = append(valid, f)
	}
	return valid, skipped, m.Source, nil
}
