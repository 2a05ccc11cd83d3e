// Package corridor matches line corridors, e.g.
//
//	WI 0.5KM EITHER SIDE OF LINE JOINING POINTS:
//	595835N0301229E-595811N0301228E-595809N0301307E
//
// The output is the corridor centre line; the width is retained as
// metadata rather than buffered into a polygon.
package corridor

import (
	"regexp"
	"strings"

	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the extracted corridor parameters.
type Area struct {
	Waypoints []orb.Point
	WidthKM   float64
}

func (a *Area) Kind() string { return geo.ShapeCorridor }

func (a *Area) Build() (*geo.Geometry, error) {
	line, err := shapes.Corridor(a.Waypoints)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: line,
		Meta: &geo.Meta{
			Shape:           geo.ShapeCorridor,
			CorridorWidthKM: a.WidthKM,
		},
	}, nil
}

// WI 0.5KM EITHER SIDE OF LINE JOINING POINTS: <coord>-<coord>-...
var corridorPattern = regexp.MustCompile(
	`(?:WI\s+)?` + patterns.Dist + `\s+EITHER\s+SIDE\s+OF\s+LINE` +
		`(?:\s+JOINING\s+POINTS:?)?\s+` +
		`(` + patterns.Coord + `(?:\s*-\s*` + patterns.Coord + `)+)`)

// Matcher matches line corridors.
type Matcher struct{}

func init() {
	registry.Register(&Matcher{})
}

func (m *Matcher) Name() string  { return "corridor" }
func (m *Matcher) Priority() int { return 50 }

func (m *Matcher) QuickCheck(text string) bool {
	return strings.Contains(text, "EITHER SIDE OF LINE")
}

func (m *Matcher) Match(text string) registry.Area {
	g := corridorPattern.FindStringSubmatch(text)
	if g == nil {
		return nil
	}

	widthKM, ok := patterns.Kilometres(g[1], g[2])
	if !ok || widthKM <= 0 {
		return nil
	}
	waypoints := patterns.ParseCoordChain(g[3])
	if len(waypoints) < 2 {
		return nil
	}
	return &Area{Waypoints: waypoints, WidthKM: widthKM}
}
