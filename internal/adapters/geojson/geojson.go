// Package geojson reads country-border datasets and flattens them into
// line strings for the border overlay.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/flightglobe/internal/core/domain"
)

// ErrUnsupported is returned for documents that are not GeoJSON objects.
var ErrUnsupported = errors.New("unsupported geojson document")

var geometryTypes = map[string]bool{
	"Point": true, "MultiPoint": true,
	"LineString": true, "MultiLineString": true,
	"Polygon": true, "MultiPolygon": true,
	"GeometryCollection": true,
}

// Parse decodes a FeatureCollection, Feature or bare geometry and returns
// every LineString, MultiLineString, Polygon ring and MultiPolygon ring as a
// line string. Points are ignored. Vertices are not validated here.
func Parse(data []byte) ([]domain.GeoLineString, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var out []domain.GeoLineString
	switch {
	case head.Type == "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		for _, f := range fc.Features {
			out = collect(f.Geometry, out)
		}
	case head.Type == "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		out = collect(f.Geometry, out)
	case geometryTypes[head.Type]:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		out = collect(g.Geometry(), out)
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnsupported, head.Type)
	}
	return out, nil
}

func collect(g orb.Geometry, out []domain.GeoLineString) []domain.GeoLineString {
	switch g := g.(type) {
	case orb.LineString:
		out = append(out, toLine(g))
	case orb.MultiLineString:
		for _, l := range g {
			out = append(out, toLine(l))
		}
	case orb.Ring:
		out = append(out, toLine(g))
	case orb.Polygon:
		for _, r := range g {
			out = append(out, toLine(r))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				out = append(out, toLine(r))
			}
		}
	case orb.Collection:
		for _, c := range g {
			out = collect(c, out)
		}
	}
	return out
}

func toLine(ps []orb.Point) domain.GeoLineString {
	l := domain.GeoLineString{Coordinates: make([]domain.GeoPoint, len(ps))}
	for i, p := range ps {
		l.Coordinates[i] = domain.GeoPoint{Lat: p.Lat(), Lng: p.Lon()}
	}
	return l
}
