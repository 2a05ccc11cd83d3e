package arc

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestMatcher_Match(t *testing.T) {
	m := &Matcher{}

	tests := []struct {
		name      string
		text      string
		clockwise bool
		radiusKM  float64
	}{
		{
			name: "clockwise along arc",
			text: "620506N1294106E THEN CLOCKWISE ALONG ARC RADIUS 30KM " +
				"CENTRE (620536N1294624E) TO 614952N1295408E",
			clockwise: true,
			radiusKM:  30,
		},
		{
			name: "clockwise by arc of a circle",
			text: "620506N1294106E THEN CLOCKWISE BY ARC OF A CIRCLE RADIUS OF 70KM " +
				"CENTRED AT (620536N1294624E) TO 614952N1295408E",
			clockwise: true,
			radiusKM:  70,
		},
		{
			name:      "anticlockwise with NM radius",
			text:      "620506N1294106E ANTICLOCKWISE ARC RADIUS 5NM CENTRE 620536N1294624E TO 614952N1295408E",
			clockwise: false,
			radiusKM:  9.26,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area := m.Match(tt.text)
			if area == nil {
				t.Fatal("expected match, got nil")
			}
			a, ok := area.(*Area)
			if !ok {
				t.Fatalf("expected *Area, got %T", area)
			}
			if a.Clockwise != tt.clockwise {
				t.Errorf("Clockwise = %v, want %v", a.Clockwise, tt.clockwise)
			}
			if math.Abs(a.RadiusKM-tt.radiusKM) > 0.001 {
				t.Errorf("RadiusKM = %v, want %v", a.RadiusKM, tt.radiusKM)
			}
			if (a.Start == orb.Point{}) || (a.Center == orb.Point{}) || (a.End == orb.Point{}) {
				t.Error("expected all three points to be set")
			}
		})
	}
}

func TestMatcher_NoMatch(t *testing.T) {
	m := &Matcher{}
	texts := []string{
		"AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E",
		"SEARCH AND RESCUE OPS IN AREA",
	}
	for _, text := range texts {
		if area := m.Match(text); area != nil {
			t.Errorf("Match(%q) = %v, want nil", text, area)
		}
	}
}

func TestMatcher_QuickCheck(t *testing.T) {
	m := &Matcher{}
	if !m.QuickCheck("CLOCKWISE ALONG ARC RADIUS") {
		t.Error("QuickCheck should pass text containing ARC")
	}
	if m.QuickCheck("CIRCLE RADIUS 5KM") {
		t.Error("QuickCheck should reject text without ARC")
	}
}

func TestArea_Build(t *testing.T) {
	m := &Matcher{}
	area := m.Match("620506N1294106E THEN CLOCKWISE ALONG ARC RADIUS 30KM " +
		"CENTRE (620536N1294624E) TO 614952N1295408E")
	if area == nil {
		t.Fatal("expected match, got nil")
	}

	g, err := area.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.Type() != "Polygon" {
		t.Errorf("geometry type = %q, want Polygon", g.Type())
	}
	if g.Meta == nil || g.Meta.Shape != "arc" {
		t.Errorf("meta = %+v, want shape arc", g.Meta)
	}
	if math.Abs(g.Meta.RadiusNM-30/1.852) > 0.001 {
		t.Errorf("RadiusNM = %v, want %v", g.Meta.RadiusNM, 30/1.852)
	}
}
