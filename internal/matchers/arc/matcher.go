// Package arc matches boundary segments travelling clockwise or
// anticlockwise along an arc, e.g.
//
//	620506N1294106E THEN CLOCKWISE ALONG ARC RADIUS 30KM
//	CENTRE (620536N1294624E) TO 614952N1295408E
//
// Arc text also contains the RADIUS and CENTRE tokens used by circle and
// sector phrasing, so this matcher runs before both.
package arc

import (
	"regexp"
	"strings"

	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the extracted arc parameters: the declared start point, the
// arc center and radius, the travel direction and the declared end point.
type Area struct {
	Start     orb.Point
	Center    orb.Point
	End       orb.Point
	RadiusKM  float64
	Clockwise bool
}

func (a *Area) Kind() string { return geo.ShapeArc }

func (a *Area) Build() (*geo.Geometry, error) {
	poly, err := shapes.Arc(a.Start, a.Center, a.RadiusKM, a.Clockwise, a.End)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: poly,
		Meta: &geo.Meta{
			Shape:    geo.ShapeArc,
			RadiusNM: patterns.KilometresToNM(a.RadiusKM),
		},
	}, nil
}

// Observed phrasings:
//
//	<coord> THEN CLOCKWISE ALONG ARC RADIUS 30KM CENTRE (<coord>) TO <coord>
//	<coord> THEN CLOCKWISE BY ARC OF A CIRCLE RADIUS OF 70KM CENTRED AT (<coord>) TO <coord>
//	<coord> ANTICLOCKWISE ARC RADIUS 5NM CENTRE <coord> TO <coord>
var arcPattern = regexp.MustCompile(
	patterns.CoordCapture +
		`[\s.-]*(?:THEN\s+)?(ANTICLOCKWISE|CLOCKWISE)\s+` +
		`(?:ALONG\s+|BY\s+)?ARC(?:\s+OF\s+A\s+CIRCLE)?\s+` +
		`RADIUS\s+(?:OF\s+)?` + patterns.Dist + `\s+` +
		`CENT(?:RE|ER)(?:E?D)?(?:\s+AT|\s+ON)?\s*\(?\s*` + patterns.CoordCapture + `\s*\)?` +
		`\s+TO\s+\(?` + patterns.CoordCapture + `\)?`)

// Matcher matches arc boundary segments.
type Matcher struct{}

func init() {
	registry.Register(&Matcher{})
}

func (m *Matcher) Name() string  { return "arc" }
func (m *Matcher) Priority() int { return 10 }

func (m *Matcher) QuickCheck(text string) bool {
	return strings.Contains(text, "ARC")
}

func (m *Matcher) Match(text string) registry.Area {
	g := arcPattern.FindStringSubmatch(text)
	if g == nil {
		return nil
	}

	start, err := patterns.ParseCoord(g[1])
	if err != nil {
		return nil
	}
	radiusKM, ok := patterns.Kilometres(g[3], g[4])
	if !ok || radiusKM <= 0 {
		return nil
	}
	center, err := patterns.ParseCoord(g[5])
	if err != nil {
		return nil
	}
	end, err := patterns.ParseCoord(g[6])
	if err != nil {
		return nil
	}

	return &Area{
		Start:     start,
		Center:    center,
		End:       end,
		RadiusKM:  radiusKM,
		Clockwise: g[2] == "CLOCKWISE",
	}
}
