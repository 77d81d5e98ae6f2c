package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/metrics"
)

// wsMessage is sent from client to hover a marker or look a flight up.
type wsMessage struct {
	Action       string `json:"action"` // "hover" | "lookup" | "clear"
	Target       string `json:"target"` // hover: "departure" | "arrival" | "none"
	FlightNumber string `json:"flightNumber"`
	Date         string `json:"date"`
}

// wsFrame is a full scene frame pushed to the client.
type wsFrame struct {
	Type string `json:"type"`
	domain.Frame
}

// wsHover answers a hover action. Label is nil when the target has no
// marker in the current frame.
type wsHover struct {
	Type   string             `json:"type"`
	Target domain.HoverTarget `json:"target"`
	Label  *domain.GeoPoint   `json:"label"`
}

type wsError struct {
	Type             string   `json:"type"`
	Code             string   `json:"code"`
	Message          string   `json:"message"`
	AvailableFlights []string `json:"available_flights,omitempty"`
}

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsSession is the per-connection rendering state: the last frame sent,
// the newest generation seen from each origin and the hovered marker.
type wsSession struct {
	mu    sync.Mutex
	seen  map[string]uint64
	frame domain.Frame
	hover domain.HoverTarget
}

func newWSSession() *wsSession {
	return &wsSession{seen: make(map[string]uint64)}
}

// accept makes f the session frame unless its origin already produced a
// newer one. resetHover is set when the hovered marker disappeared.
func (s *wsSession) accept(f domain.Frame) (resetHover, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, seen := s.seen[f.Origin]; seen && f.Generation < last {
		return false, false
	}
	s.seen[f.Origin] = f.Generation
	s.frame = f
	if s.hover != domain.HoverNone && f.Label(s.hover) == nil {
		s.hover = domain.HoverNone
		return true, true
	}
	return false, true
}

// latestFrame is a one-slot mailbox. offer never blocks; a frame still
// waiting is replaced by the newer one.
type latestFrame chan domain.Frame

func (q latestFrame) offer(f domain.Frame) {
	for {
		select {
		case q <- f:
			return
		default:
		}
		select {
		case <-q:
		default:
		}
	}
}

// WebSocketHandler returns a handler that streams scene frames to the
// client and serves hover and lookup actions.
// On connect the current frame is sent; every scene change pushes another.
// Frames are written by a per-connection goroutine, so a slow client never
// holds up the scene. Clients send JSON: {"action":"hover","target":"departure"}
// or {"action":"lookup","flightNumber":"BA123","date":"2024-07-11"}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.Default().With("remote_addr", c.RemoteAddr().String())
		log.Info("ws client connected")

		var mu sync.Mutex

		// Helper: thread-safe write with a deadline
		writeMessage := func(kind int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteWait))
			return c.WriteMessage(kind, data)
		}
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return writeMessage(websocket.TextMessage, data)
		}

		sess := newWSSession()
		sendFrame := func(f domain.Frame) error {
			resetHover, ok := sess.accept(f)
			if !ok {
				return nil
			}
			if err := writeJSON(wsFrame{Type: "frame", Frame: f}); err != nil {
				return err
			}
			if resetHover {
				return writeJSON(wsHover{Type: "hover", Target: domain.HoverNone})
			}
			return nil
		}

		frames := make(latestFrame, 1)
		stop, err := deps.Feed.SubscribeFrames(frames.offer)
		if err != nil {
			log.Error("ws frame subscribe failed", "error", err)
			return
		}
		defer stop()

		if err := sendFrame(deps.Scene.Frame()); err != nil {
			log.Warn("ws initial frame write failed", "error", err)
			return
		}

		var wg sync.WaitGroup
		done := make(chan struct{})
		defer func() {
			close(done)
			_ = c.Close()
			wg.Wait()
		}()

		// Frame writer
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case f := <-frames:
					if err := sendFrame(f); err != nil {
						log.Warn("ws frame write failed, closing", "error", err)
						_ = c.Close()
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Keep-alive ping
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := writeMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(wsError{Type: "error", Code: "bad_request", Message: "invalid JSON"})
				continue
			}

			switch m.Action {
			case "hover":
				target, err := domain.ParseHoverTarget(m.Target)
				if err != nil {
					_ = writeJSON(wsError{Type: "error", Code: "bad_request", Message: err.Error()})
					continue
				}
				sess.mu.Lock()
				sess.hover = target
				label := sess.frame.Label(target)
				sess.mu.Unlock()
				_ = writeJSON(wsHover{Type: "hover", Target: target, Label: label})

			case "lookup":
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				_, err := deps.Scene.SelectFlight(ctx, m.FlightNumber, m.Date)
				cancel()
				if err != nil {
					_ = writeJSON(lookupError(err))
				}

			case "clear":
				deps.Scene.ClearFlight(context.Background())

			default:
				_ = writeJSON(wsError{Type: "error", Code: "bad_request", Message: "unknown action: " + m.Action})
			}
		}

		log.Info("ws client disconnected")
	}
}

func lookupError(err error) wsError {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		return wsError{Type: "error", Code: "flight_not_found", Message: nf.Error(), AvailableFlights: nf.Available}
	case errors.Is(err, domain.ErrInvalidInput):
		return wsError{Type: "error", Code: "bad_request", Message: err.Error()}
	default:
		return wsError{Type: "error", Code: "internal_error", Message: "flight lookup failed"}
	}
}
