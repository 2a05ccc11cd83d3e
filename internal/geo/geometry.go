// Package geo wraps orb geometries with the shape metadata produced by the
// restriction-text matchers and serializes them as GeoJSON geometry objects
// extended with a non-standard "meta" member.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

// Shape labels carried in Meta.Shape.
const (
	ShapeCircle   = "circle"
	ShapeEllipse  = "ellipse"
	ShapeArc      = "arc"
	ShapeSector   = "sector"
	ShapePolygon  = "polygon"
	ShapeCorridor = "corridor"
	ShapePoint    = "point"
)

// Meta carries shape provenance alongside the geometry. It is non-standard
// GeoJSON but downstream consumers rely on it for styling and QA.
type Meta struct {
	Shape           string  `json:"shape"`
	RadiusNM        float64 `json:"radius_nm,omitempty"`
	CorridorWidthKM float64 `json:"corridor_width_km,omitempty"`
	Fallback        string  `json:"fallback,omitempty"`
}

// Geometry is the final output object: either a single orb geometry or, for
// mixed-kind multi-area results, an ordered list of parts forming a
// GeometryCollection. Geometries are immutable once constructed.
type Geometry struct {
	Geometry orb.Geometry
	Parts    []Geometry // set for GeometryCollection, Geometry nil
	Meta     *Meta
}

// Type returns the GeoJSON geometry type name.
func (g *Geometry) Type() string {
	if g.Parts != nil {
		return "GeometryCollection"
	}
	switch g.Geometry.(type) {
	case orb.Point:
		return "Point"
	case orb.LineString:
		return "LineString"
	case orb.Polygon:
		return "Polygon"
	case orb.MultiPolygon:
		return "MultiPolygon"
	case orb.MultiLineString:
		return "MultiLineString"
	}
	return ""
}

type geometryJSON struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates,omitempty"`
	Geometries  []Geometry  `json:"geometries,omitempty"`
	Meta        *Meta       `json:"meta,omitempty"`
}

// MarshalJSON serializes the geometry as a GeoJSON geometry object. orb's
// slice-backed types marshal directly as coordinate arrays in [lon, lat]
// order.
func (g Geometry) MarshalJSON() ([]byte, error) {
	out := geometryJSON{Meta: g.Meta}
	if g.Parts != nil {
		out.Type = "GeometryCollection"
		out.Geometries = g.Parts
		return json.Marshal(out)
	}
	t := g.Type()
	if t == "" {
		return nil, fmt.Errorf("unsupported geometry type %T", g.Geometry)
	}
	out.Type = t
	out.Coordinates = g.Geometry
	return json.Marshal(out)
}

// NewPoint builds a Point geometry with the given metadata.
func NewPoint(p orb.Point, meta *Meta) *Geometry {
	return &Geometry{Geometry: p, Meta: meta}
}

// Aggregate combines per-area geometries into the final multi-part result:
// one area passes through unchanged, all-polygon sets become a MultiPolygon,
// all-line sets a MultiLineString, mixed sets a GeometryCollection in area
// order. An empty input yields nil so the caller can fall through to the
// next resolution stage.
func Aggregate(parts []Geometry) *Geometry {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return &parts[0]
	}

	polygons := make(orb.MultiPolygon, 0, len(parts))
	lines := make(orb.MultiLineString, 0, len(parts))
	for _, p := range parts {
		switch geom := p.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, geom)
		case orb.LineString:
			lines = append(lines, geom)
		}
	}

	switch {
	case len(polygons) == len(parts):
		return &Geometry{Geometry: polygons}
	case len(lines) == len(parts):
		return &Geometry{Geometry: lines}
	}
	return &Geometry{Parts: parts}
}
