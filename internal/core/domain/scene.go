package domain

import (
	"fmt"
	"strings"
)

// Markers holds the overlay points placed for a flight. A nil field means
// the marker was omitted, usually because its coordinate was malformed.
type Markers struct {
	Departure *Point3D `json:"departure,omitempty"`
	Arrival   *Point3D `json:"arrival,omitempty"`
	Direction *Point3D `json:"direction,omitempty"`
}

// HoverTarget is the marker currently under the pointer.
// It belongs to the rendering layer, not the geometry.
type HoverTarget int

const (
	HoverNone HoverTarget = iota
	HoverDeparture
	HoverArrival
)

func (h HoverTarget) String() string {
	switch h {
	case HoverDeparture:
		return "departure"
	case HoverArrival:
		return "arrival"
	default:
		return "none"
	}
}

// ParseHoverTarget accepts "departure", "arrival", "none" or "".
func ParseHoverTarget(s string) (HoverTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return HoverNone, nil
	case "departure", "from":
		return HoverDeparture, nil
	case "arrival", "to":
		return HoverArrival, nil
	default:
		return HoverNone, fmt.Errorf("%w: unknown hover target %q", ErrInvalidInput, s)
	}
}

// MarshalText lets HoverTarget travel as a JSON string.
func (h HoverTarget) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Globe describes the base sphere mesh.
type Globe struct {
	Radius         float64 `json:"radius"`
	WidthSegments  int     `json:"width_segments"`
	HeightSegments int     `json:"height_segments"`
	BumpScale      float64 `json:"bump_scale"`
}

// PointLight is a positioned light source.
type PointLight struct {
	Color     string     `json:"color"`
	Position  [3]float64 `json:"position"`
	Intensity float64    `json:"intensity"`
}

// Lighting is the scene's light setup.
type Lighting struct {
	AmbientIntensity float64    `json:"ambient_intensity"`
	Point            PointLight `json:"point"`
}

// OrbitControls are the user camera controls; no programmatic camera
// movement exists.
type OrbitControls struct {
	EnableZoom   bool    `json:"enable_zoom"`
	EnablePan    bool    `json:"enable_pan"`
	EnableRotate bool    `json:"enable_rotate"`
	ZoomSpeed    float64 `json:"zoom_speed"`
	PanSpeed     float64 `json:"pan_speed"`
	RotateSpeed  float64 `json:"rotate_speed"`
}

// StarField is the background star sphere.
type StarField struct {
	Radius float64 `json:"radius"`
	Depth  float64 `json:"depth"`
	Count  int     `json:"count"`
	Factor float64 `json:"factor"`
}

// Frame is a complete, immutable snapshot of what the rendering surface
// should draw. Generation increases by one on every scene change of the
// composer named by Origin; generations from different origins are not
// comparable.
type Frame struct {
	Generation uint64        `json:"generation"`
	Origin     string        `json:"origin,omitempty"`
	Globe      Globe         `json:"globe"`
	Lighting   Lighting      `json:"lighting"`
	Controls   OrbitControls `json:"controls"`
	Stars      StarField     `json:"stars"`
	Flight     *FlightPair   `json:"flight,omitempty"`
	Arc        []Point3D     `json:"arc"`
	Markers    *Markers      `json:"markers,omitempty"`
	Borders    []Polyline    `json:"borders,omitempty"`
	DistanceKm *float64      `json:"distance_km,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// HasFlightOverlay reports whether the frame carries any flight geometry.
func (f Frame) HasFlightOverlay() bool {
	if len(f.Arc) > 0 {
		return true
	}
	return f.Markers != nil &&
		(f.Markers.Departure != nil || f.Markers.Arrival != nil || f.Markers.Direction != nil)
}

// Label returns the airport label for a hover target, or nil when the
// target is HoverNone or has no marker in the frame.
func (f Frame) Label(target HoverTarget) *GeoPoint {
	if f.Flight == nil || f.Markers == nil {
		return nil
	}
	switch target {
	case HoverDeparture:
		if f.Markers.Departure == nil {
			return nil
		}
		p := f.Flight.From
		return &p
	case HoverArrival:
		if f.Markers.Arrival == nil {
			return nil
		}
		p := f.Flight.To
		return &p
	default:
		return nil
	}
}
