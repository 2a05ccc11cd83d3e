package resolver

import (
	"errors"
	"reflect"
	"testing"

	"notam_parser/internal/airports"
	"notam_parser/internal/geo"
	_ "notam_parser/internal/matchers" // register all shape matchers via init()
	"notam_parser/internal/notam"
	"notam_parser/internal/registry"
)

func init() {
	registry.Default().Sort()
}

func testTable() airports.Table {
	return airports.Table{
		"UUEE": {ICAO: "UUEE", Name: "Sheremetyevo", Lat: 55.972, Lon: 37.414},
	}
}

func TestFromText_Circle(t *testing.T) {
	g := FromText("AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E")
	if g == nil {
		t.Fatal("expected geometry, got nil")
	}
	if g.Type() != "Polygon" {
		t.Errorf("type = %q, want Polygon", g.Type())
	}
	if g.Meta == nil || g.Meta.Shape != geo.ShapeCircle {
		t.Errorf("meta = %+v, want circle", g.Meta)
	}
}

func TestFromText_LowercaseInput(t *testing.T) {
	// Matching happens on normalized text.
	g := FromText("airspace clsd wi circle radius 5km centre 612800N0401500E")
	if g == nil {
		t.Fatal("expected geometry from lowercase input, got nil")
	}
}

func TestFromText_MultiArea(t *testing.T) {
	text := "AIRSPACE CLSD AS FLW: " +
		"1. WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E " +
		"2. 595835N0301229E-595811N0301228E-595809N0301307E-595835N0301229E"

	g := FromText(text)
	if g == nil {
		t.Fatal("expected geometry, got nil")
	}
	if g.Type() != "MultiPolygon" {
		t.Errorf("type = %q, want MultiPolygon", g.Type())
	}
}

func TestFromText_MixedKinds(t *testing.T) {
	text := "AIRSPACE CLSD AS FLW: " +
		"1. WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E " +
		"2. WI 0.5KM EITHER SIDE OF LINE JOINING POINTS: 595835N0301229E-595811N0301228E"

	g := FromText(text)
	if g == nil {
		t.Fatal("expected geometry, got nil")
	}
	if g.Type() != "GeometryCollection" {
		t.Errorf("type = %q, want GeometryCollection", g.Type())
	}
	if len(g.Parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(g.Parts))
	}
	if g.Parts[0].Meta.Shape != geo.ShapeCircle || g.Parts[1].Meta.Shape != geo.ShapeCorridor {
		t.Errorf("part shapes = %q, %q; want circle, corridor",
			g.Parts[0].Meta.Shape, g.Parts[1].Meta.Shape)
	}
}

func TestFromText_NoMatch(t *testing.T) {
	if g := FromText("RWY 08/26 CLSD DUE TO MAINTENANCE"); g != nil {
		t.Errorf("FromText(no shapes) = %v, want nil", g)
	}
	if g := FromText(""); g != nil {
		t.Errorf("FromText(empty) = %v, want nil", g)
	}
}

func TestResolve_TextStage(t *testing.T) {
	rec := &notam.Record{
		ID:   "Q2500/25",
		Body: "AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 553500N0371600E",
		Area: &notam.AreaAttr{Lat: "5535N", Lon: "03716E", RadiusNM: 25},
	}

	result, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Stage != StageText {
		t.Errorf("stage = %q, want %q", result.Stage, StageText)
	}
	// The text match wins; no fallback marker is set.
	if result.Geometry.Meta.Fallback != "" {
		t.Errorf("fallback = %q, want empty", result.Geometry.Meta.Fallback)
	}
}

func TestResolve_AreaStage(t *testing.T) {
	rec := &notam.Record{
		ID:   "Q2500/25",
		Body: "SEARCH AND RESCUE OPS WILL TAKE PLACE",
		Area: &notam.AreaAttr{Lat: "5535N", Lon: "03716E", RadiusNM: 25},
	}

	result, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Stage != StageArea {
		t.Errorf("stage = %q, want %q", result.Stage, StageArea)
	}
	g := result.Geometry
	if g.Type() != "Polygon" {
		t.Errorf("type = %q, want Polygon (circle from radius)", g.Type())
	}
	if g.Meta.Shape != geo.ShapeCircle || g.Meta.RadiusNM != 25 {
		t.Errorf("meta = %+v, want circle radius 25", g.Meta)
	}
	if g.Meta.Fallback != StageArea {
		t.Errorf("fallback = %q, want %q", g.Meta.Fallback, StageArea)
	}
}

func TestResolve_AreaStage_HugeRadiusDegradesToPoint(t *testing.T) {
	rec := &notam.Record{
		ID:   "Q2500/25",
		Body: "SEARCH AND RESCUE OPS WILL TAKE PLACE",
		Area: &notam.AreaAttr{Lat: "5535N", Lon: "03716E", RadiusNM: 999},
	}

	result, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Stage != StageArea {
		t.Errorf("stage = %q, want %q", result.Stage, StageArea)
	}
	if result.Geometry.Type() != "Point" {
		t.Errorf("type = %q, want Point for radius above cap", result.Geometry.Type())
	}
}

func TestResolve_AirportStage(t *testing.T) {
	rec := &notam.Record{
		ID:        "A0100/25",
		Body:      "TWY B CLSD",
		Locations: []string{"ZZZZ", "UUEE"},
	}

	result, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Stage != StageAirport {
		t.Errorf("stage = %q, want %q", result.Stage, StageAirport)
	}
	g := result.Geometry
	if g.Type() != "Point" {
		t.Errorf("type = %q, want Point", g.Type())
	}
	if g.Meta.Fallback != StageAirport {
		t.Errorf("fallback = %q, want %q", g.Meta.Fallback, StageAirport)
	}
}

func TestResolve_AllStagesFail(t *testing.T) {
	rec := &notam.Record{
		ID:        "A0100/25",
		Body:      "TWY B CLSD",
		Locations: []string{"ZZZZ"},
	}

	result, err := Resolve(rec, testTable())
	if result != nil {
		t.Fatalf("Resolve() = %v, want nil", result)
	}
	if !errors.Is(err, ErrNoPatternMatch) {
		t.Errorf("error %v does not wrap ErrNoPatternMatch", err)
	}
	if !errors.Is(err, ErrNoAttributeArea) {
		t.Errorf("error %v does not wrap ErrNoAttributeArea", err)
	}
	if !errors.Is(err, ErrNoAirportMatch) {
		t.Errorf("error %v does not wrap ErrNoAirportMatch", err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	rec := &notam.Record{
		ID:   "Q2500/25",
		Body: "AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 553500N0371600E",
	}

	first, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	second, err := Resolve(rec, testTable())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if first.Stage != second.Stage {
		t.Errorf("stages differ: %q vs %q", first.Stage, second.Stage)
	}
	if !reflect.DeepEqual(first.Geometry, second.Geometry) {
		t.Error("repeated resolution produced different geometry")
	}
}
