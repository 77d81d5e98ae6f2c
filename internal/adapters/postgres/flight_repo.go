package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// FlightRepo implements ports.FlightRepository on the flights table.
type FlightRepo struct {
	db *DB
}

func NewFlightRepo(db *DB) *FlightRepo {
	return &FlightRepo{db: db}
}

const upsertFlightSQL = `
	INSERT INTO flights (
		flight_number, flight_date,
		dep_lat, dep_lng, dep_city, dep_airport, dep_code,
		arr_lat, arr_lng, arr_city, arr_airport, arr_code
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (flight_number, flight_date) DO UPDATE
	SET dep_lat = EXCLUDED.dep_lat, dep_lng = EXCLUDED.dep_lng,
	    dep_city = EXCLUDED.dep_city, dep_airport = EXCLUDED.dep_airport, dep_code = EXCLUDED.dep_code,
	    arr_lat = EXCLUDED.arr_lat, arr_lng = EXCLUDED.arr_lng,
	    arr_city = EXCLUDED.arr_city, arr_airport = EXCLUDED.arr_airport, arr_code = EXCLUDED.arr_code,
	    updated_at = now()
`

func flightArgs(p *domain.FlightPair) ([]any, error) {
	date, err := time.Parse(domain.DateLayout, p.Date)
	if err != nil {
		return nil, fmt.Errorf("flight %s: %w: bad date %q", p.FlightNumber, domain.ErrInvalidInput, p.Date)
	}
	return []any{
		p.FlightNumber, date,
		p.From.Lat, p.From.Lng, p.From.City, p.From.Airport, p.From.Code,
		p.To.Lat, p.To.Lng, p.To.City, p.To.Airport, p.To.Code,
	}, nil
}

// Upsert inserts or replaces a single flight.
func (r *FlightRepo) Upsert(ctx context.Context, pair *domain.FlightPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	args, err := flightArgs(pair)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, upsertFlightSQL, args...)
	return err
}

// UpsertBatch inserts many flights using pgx.Batch (used by the ingestor).
func (r *FlightRepo) UpsertBatch(ctx context.Context, pairs []domain.FlightPair) error {
	batch := &pgx.Batch{}
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			return fmt.Errorf("flight %s: %w", pairs[i].FlightNumber, err)
		}
		args, err := flightArgs(&pairs[i])
		if err != nil {
			return err
		}
		batch.Queue(upsertFlightSQL, args...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range pairs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// FindFlight returns domain.ErrFlightNotFound when no row matches.
func (r *FlightRepo) FindFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	date, err := time.Parse(domain.DateLayout, q.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", domain.ErrInvalidInput, q.Date)
	}

	p := domain.FlightPair{FlightNumber: q.FlightNumber, Date: q.Date, Source: domain.SourceDatabase}
	err = r.db.Pool.QueryRow(ctx, `
		SELECT dep_lat, dep_lng, dep_city, dep_airport, dep_code,
		       arr_lat, arr_lng, arr_city, arr_airport, arr_code
		FROM flights
		WHERE flight_number = $1 AND flight_date = $2
	`, q.FlightNumber, date).Scan(
		&p.From.Lat, &p.From.Lng, &p.From.City, &p.From.Airport, &p.From.Code,
		&p.To.Lat, &p.To.Lng, &p.To.City, &p.To.Airport, &p.To.Code,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query flight: %w", err)
	}
	return &p, nil
}

func (r *FlightRepo) ListFlightNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT flight_number FROM flights ORDER BY flight_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			return nil, err
		}
		out = append(out, num)
	}
	return out, rows.Err()
}
