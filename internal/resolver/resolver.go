// Package resolver turns a NOTAM into a geometry through a three-stage
// fallback chain: restriction-text matching, the pre-decoded Q) area
// attribute, then the airport reference table. The chain is an ordered
// list of resolver functions tried until one succeeds; every failure is
// recoverable and the only caller-visible outcome is a geometry (plus the
// stage that produced it) or an explicit absence.
package resolver

import (
	"errors"

	"github.com/paulmach/orb"

	"notam_parser/internal/airports"
	"notam_parser/internal/geo"
	"notam_parser/internal/notam"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Stage failure reasons. Each one hands resolution to the next stage;
// they surface to callers only through Resolve's combined error when
// every stage has failed.
var (
	ErrNoPatternMatch  = errors.New("no shape pattern matched restriction text")
	ErrNoAttributeArea = errors.New("no usable area attribute")
	ErrNoAirportMatch  = errors.New("no airport match for location codes")
)

// MaxCircleRadiusNM caps the area-attribute radius rendered as a circle
// polygon; larger areas degrade to a point at the declared centre.
const MaxCircleRadiusNM = 500

// Stage labels identifying which resolution source produced a geometry.
const (
	StageText    = "text"
	StageArea    = "area"
	StageAirport = "airport"
)

// Result carries a resolved geometry plus the stage that produced it.
type Result struct {
	Geometry *geo.Geometry
	Stage    string
}

// Resolve runs the fallback chain for one record. A nil Result with a
// non-nil error means no stage produced a geometry; the error reports why
// each stage declined and is informational, not fatal.
func Resolve(rec *notam.Record, table airports.Table) (*Result, error) {
	if g := FromText(rec.Body); g != nil {
		return &Result{Geometry: g, Stage: StageText}, nil
	}
	if g := fromAreaAttr(rec.Area); g != nil {
		return &Result{Geometry: g, Stage: StageArea}, nil
	}
	if g := fromAirport(rec.Locations, table); g != nil {
		return &Result{Geometry: g, Stage: StageAirport}, nil
	}
	return nil, errors.Join(ErrNoPatternMatch, ErrNoAttributeArea, ErrNoAirportMatch)
}

// FromText classifies each numbered sub-area of the restriction text and
// aggregates the per-area geometries. Sub-areas that fail to classify or
// build are skipped; an empty result yields nil so the caller can fall
// through to the next stage.
func FromText(text string) *geo.Geometry {
	if text == "" {
		return nil
	}
	norm := patterns.Normalize(text)

	var parts []geo.Geometry
	for _, sub := range patterns.SplitAreas(norm) {
		area := registry.Default().MatchFirst(sub)
		if area == nil {
			continue
		}
		g, err := area.Build()
		if err != nil {
			continue
		}
		parts = append(parts, *g)
	}
	return geo.Aggregate(parts)
}

// fromAreaAttr converts the pre-decoded Q) area attribute to a geometry:
// a circle polygon when a usable radius is present, otherwise a point at
// the declared centre.
func fromAreaAttr(area *notam.AreaAttr) *geo.Geometry {
	if area == nil {
		return nil
	}
	lat, okLat := patterns.ParseDDMM(area.Lat)
	lon, okLon := patterns.ParseDDMM(area.Lon)
	if !okLat || !okLon || lat < -90 || lat > 90 {
		return nil
	}
	center := orb.Point{lon, lat}

	if area.RadiusNM > 0 && area.RadiusNM < MaxCircleRadiusNM {
		poly, err := shapes.Circle(center, area.RadiusNM*1.852)
		if err == nil {
			return &geo.Geometry{
				Geometry: poly,
				Meta: &geo.Meta{
					Shape:    geo.ShapeCircle,
					RadiusNM: area.RadiusNM,
					Fallback: StageArea,
				},
			}
		}
	}
	return geo.NewPoint(center, &geo.Meta{Shape: geo.ShapePoint, Fallback: StageArea})
}

// fromAirport resolves the record's first known location code against the
// airport table and emits a point geometry there.
func fromAirport(locations []string, table airports.Table) *geo.Geometry {
	for _, code := range locations {
		ap, ok := table.Lookup(code)
		if !ok {
			continue
		}
		return geo.NewPoint(orb.Point{ap.Lon, ap.Lat},
			&geo.Meta{Shape: geo.ShapePoint, Fallback: StageAirport})
	}
	return nil
}
