package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// Subjects carried by the GLOBE_SCENE stream.
const (
	StreamName             = "GLOBE_SCENE"
	SubjectSceneUpdated    = "globe.scene.updated"
	SubjectFlightSelected  = "globe.flight.selected"
	SubjectFlightCleared   = "globe.flight.cleared"
	SubjectBoundariesReady = "globe.boundaries.refreshed"
	subjectStreamWildcards = "globe.>"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectStreamWildcards},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		MaxMsgs:   10_000,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, so try an update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSceneUpdate publishes the full frame.
func (p *Publisher) PublishSceneUpdate(ctx context.Context, frame domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSceneUpdated, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishFlightSelected(ctx context.Context, pair *domain.FlightPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectFlightSelected, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishFlightCleared(ctx context.Context) error {
	_, err := p.js.Publish(SubjectFlightCleared, []byte("{}"), nats.Context(ctx))
	return err
}

// PublishBoundariesRefreshed announces that a new border dataset is in the
// cache so API replicas reload it.
func (p *Publisher) PublishBoundariesRefreshed(ctx context.Context, polylines int) error {
	data, err := json.Marshal(map[string]int{"polylines": polylines})
	if err != nil {
		return fmt.Errorf("marshal boundary event: %w", err)
	}
	_, err = p.js.Publish(SubjectBoundariesReady, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("flightglobe"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
