package scene

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

// Config controls overlay geometry. Origin tags every frame with the
// composer that produced it; a random ID is used when empty.
type Config struct {
	BaseRadius float64
	Segments   int
	Origin     string
}

// DefaultConfig is a 1.5 unit globe with 50-segment arcs.
func DefaultConfig() Config {
	return Config{BaseRadius: 1.5, Segments: geospatial.DefaultSegments}
}

// Composer owns the current FlightPair and the geometry derived from it.
// Every change fully replaces the flight overlay, bumps the generation and
// notifies listeners with the new frame. Concurrent writers are serialized;
// the last write wins.
type Composer struct {
	cfg      Config
	settings Settings
	log      *slog.Logger

	mu         sync.RWMutex
	generation uint64
	pair       *domain.FlightPair
	arc        []domain.Point3D
	markers    *domain.Markers
	distanceKm *float64
	borders    []domain.Polyline
	warnings   []string

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func(domain.Frame)
}

// NewComposer creates an empty scene: base globe, no flight.
func NewComposer(cfg Config, log *slog.Logger) *Composer {
	if cfg.BaseRadius <= 0 {
		cfg.BaseRadius = DefaultConfig().BaseRadius
	}
	if cfg.Segments < 1 {
		cfg.Segments = geospatial.DefaultSegments
	}
	if cfg.Origin == "" {
		cfg.Origin = uuid.NewString()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Composer{
		cfg:       cfg,
		settings:  DefaultSettings(cfg.BaseRadius),
		log:       log.With("component", "scene"),
		listeners: make(map[int]func(domain.Frame)),
	}
}

// Config returns the geometry configuration.
func (c *Composer) Config() Config { return c.cfg }

// SetFlightPair replaces the current flight and regenerates its arc and
// markers. Malformed endpoints are logged and their geometry omitted; the
// arc needs both endpoints.
func (c *Composer) SetFlightPair(pair domain.FlightPair) domain.Frame {
	markers, markerErr := PlaceMarkers(pair, c.cfg.BaseRadius)

	var (
		arc      []domain.Point3D
		dist     *float64
		warnings []string
	)
	if markerErr != nil {
		c.log.Warn("omitting malformed flight geometry",
			"flight", pair.FlightNumber, "date", pair.Date, "error", markerErr)
		warnings = append(warnings, splitJoined(markerErr)...)
		warnings = append(warnings, "arc omitted: both endpoints are required")
	} else {
		arc = geospatial.GenerateArc(pair.From, pair.To, c.cfg.BaseRadius, c.cfg.Segments)
		d := geospatial.FlightDistanceKm(pair)
		dist = &d
	}

	c.mu.Lock()
	p := finitePair(pair)
	c.pair = &p
	c.arc = arc
	c.markers = &markers
	c.distanceKm = dist
	c.warnings = warnings
	c.generation++
	f := c.frameLocked()
	c.mu.Unlock()

	c.log.Debug("scene recomputed", "generation", f.Generation, "flight", pair.FlightNumber, "arc_points", len(arc))
	c.notify(f)
	return f
}

// Clear drops the current flight. The frame then carries no arc and no
// markers; borders are part of the base globe and stay.
func (c *Composer) Clear() domain.Frame {
	c.mu.Lock()
	c.pair = nil
	c.arc = nil
	c.markers = nil
	c.distanceKm = nil
	c.warnings = nil
	c.generation++
	f := c.frameLocked()
	c.mu.Unlock()

	c.log.Debug("scene cleared", "generation", f.Generation)
	c.notify(f)
	return f
}

// SetBorders replaces the border overlay.
func (c *Composer) SetBorders(borders []domain.Polyline) domain.Frame {
	c.mu.Lock()
	c.borders = borders
	c.generation++
	f := c.frameLocked()
	c.mu.Unlock()

	c.notify(f)
	return f
}

// Frame returns a snapshot of the current scene.
func (c *Composer) Frame() domain.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameLocked()
}

// OnChange registers fn to run after every scene change. fn runs on the
// writer's goroutine and must not call back into a Composer setter.
// The returned function removes the listener.
func (c *Composer) OnChange(fn func(domain.Frame)) (cancel func()) {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *Composer) notify(f domain.Frame) {
	c.lmu.Lock()
	fns := make([]func(domain.Frame), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(f)
	}
}

// frameLocked copies every slice so callers can never alias scene state.
func (c *Composer) frameLocked() domain.Frame {
	f := domain.Frame{
		Generation: c.generation,
		Origin:     c.cfg.Origin,
		Globe:      c.settings.Globe,
		Lighting:   c.settings.Lighting,
		Controls:   c.settings.Controls,
		Stars:      c.settings.Stars,
		Arc:        append([]domain.Point3D{}, c.arc...),
	}
	if c.pair != nil {
		p := *c.pair
		f.Flight = &p
	}
	if c.markers != nil {
		m := *c.markers
		f.Markers = &m
	}
	if c.distanceKm != nil {
		d := *c.distanceKm
		f.DistanceKm = &d
	}
	if len(c.borders) > 0 {
		f.Borders = make([]domain.Polyline, len(c.borders))
		for i, b := range c.borders {
			f.Borders[i] = append(domain.Polyline{}, b...)
		}
	}
	if len(c.warnings) > 0 {
		f.Warnings = append([]string{}, c.warnings...)
	}
	return f
}

// finitePair zeroes NaN and Inf coordinates so the frame stays encodable.
// The affected endpoint has no marker, so nothing renders at the zero.
func finitePair(p domain.FlightPair) domain.FlightPair {
	p.From = finitePoint(p.From)
	p.To = finitePoint(p.To)
	return p
}

func finitePoint(g domain.GeoPoint) domain.GeoPoint {
	if math.IsNaN(g.Lat) || math.IsInf(g.Lat, 0) {
		g.Lat = 0
	}
	if math.IsNaN(g.Lng) || math.IsInf(g.Lng, 0) {
		g.Lng = 0
	}
	return g
}

func splitJoined(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
