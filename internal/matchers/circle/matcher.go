// Package circle matches circular restriction areas, e.g.
//
//	AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E
//
// The matcher runs after arc, sector and ellipse: their text also carries
// RADIUS/CENTRE tokens that would otherwise be mis-claimed here.
package circle

import (
	"regexp"
	"strings"

	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the extracted circle parameters.
type Area struct {
	Center   orb.Point
	RadiusKM float64
}

func (a *Area) Kind() string { return geo.ShapeCircle }

func (a *Area) Build() (*geo.Geometry, error) {
	poly, err := shapes.Circle(a.Center, a.RadiusKM)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: poly,
		Meta: &geo.Meta{
			Shape:    geo.ShapeCircle,
			RadiusNM: patterns.KilometresToNM(a.RadiusKM),
		},
	}, nil
}

var (
	// CIRCLE RADIUS 50KM CENTRE (620536N 1294624E)
	circlePattern = regexp.MustCompile(
		`CIRCLE\s+RADIUS\s+` + patterns.Dist + `\s+` +
			`CENT(?:RE|ER)(?:E?D)?(?:\s+AT|\s+ON)?\s+(?:PSN\s+)?\(?\s*` +
			patterns.CoordCapture + `\s*\)?`)

	// WI 1.5KM RADIUS CENTERED ON PSN 314705N0351414E
	radiusFirstPattern = regexp.MustCompile(
		`WI\s+` + patterns.Dist + `\s+RADIUS\s+` +
			`CENT(?:RE|ER)(?:E?D)?(?:\s+AT|\s+ON)?\s+(?:PSN\s+)?\(?\s*` +
			patterns.CoordCapture + `\s*\)?`)
)

// Matcher matches circular areas.
type Matcher struct{}

func init() {
	registry.Register(&Matcher{})
}

func (m *Matcher) Name() string  { return "circle" }
func (m *Matcher) Priority() int { return 40 }

func (m *Matcher) QuickCheck(text string) bool {
	return strings.Contains(text, "CIRCLE") ||
		strings.Contains(text, "RADIUS CENT")
}

func (m *Matcher) Match(text string) registry.Area {
	g := circlePattern.FindStringSubmatch(text)
	if g == nil {
		g = radiusFirstPattern.FindStringSubmatch(text)
	}
	if g == nil {
		return nil
	}

	radiusKM, ok := patterns.Kilometres(g[1], g[2])
	if !ok || radiusKM <= 0 {
		return nil
	}
	center, err := patterns.ParseCoord(g[3])
	if err != nil {
		return nil
	}
	return &Area{Center: center, RadiusKM: radiusKM}
}
