package natsadapter

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// FrameFeed implements ports.FrameFeed over core NATS. Each API replica
// owns its own scene and publishes its frames tagged with its origin; the
// feed relays every replica's frames, and consumers order them per origin.
type FrameFeed struct {
	conn *nats.Conn
}

// NewFrameFeed wraps an existing connection.
func NewFrameFeed(conn *nats.Conn) *FrameFeed {
	return &FrameFeed{conn: conn}
}

// SubscribeFrames calls handler for each scene update until stop is called.
// Undecodable messages are logged and skipped.
func (f *FrameFeed) SubscribeFrames(handler func(domain.Frame)) (func(), error) {
	sub, err := f.conn.Subscribe(SubjectSceneUpdated, func(msg *nats.Msg) {
		var frame domain.Frame
		if err := json.Unmarshal(msg.Data, &frame); err != nil {
			slog.Warn("dropping undecodable scene frame", "subject", msg.Subject, "error", err)
			return
		}
		handler(frame)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// OnBoundariesRefreshed calls fn whenever the refresh worker announces a new
// border dataset.
func OnBoundariesRefreshed(conn *nats.Conn, fn func()) (func(), error) {
	sub, err := conn.Subscribe(SubjectBoundariesReady, func(*nats.Msg) { fn() })
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
