// Package sector matches azimuth-wedge restriction areas, e.g.
//
//	AIRSPACE CLSD WI SECTOR CENTRE 610424N0331023E AZM 321-144 DEG RADIUS 8KM
//	AIRSPACE CLSD WI SECTOR BTN AZMAG 360-130 DEG FROM 543830N0393418E RADIUS 40KM
//
// Sector text without an azimuth range degrades to a circle around the
// declared centre.
package sector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/matchers/circle"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the extracted sector parameters. Azimuths are clockwise from
// north; AzEnd numerically below AzStart wraps across 360.
type Area struct {
	Center   orb.Point
	AzStart  float64
	AzEnd    float64
	RadiusKM float64
}

func (a *Area) Kind() string { return geo.ShapeSector }

func (a *Area) Build() (*geo.Geometry, error) {
	poly, err := shapes.Sector(a.Center, a.AzStart, a.AzEnd, a.RadiusKM)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: poly,
		Meta: &geo.Meta{
			Shape:    geo.ShapeSector,
			RadiusNM: patterns.KilometresToNM(a.RadiusKM),
		},
	}, nil
}

const azRange = `AZ(?:M|MAG)\s+(\d{1,3})\s*-\s*(\d{1,3})\s*DEG(?:REES)?`

var (
	// SECTOR CENTRE <coord> AZM 321-144 DEG RADIUS 8KM
	centreFirstPattern = regexp.MustCompile(
		`SECTOR\s+CENTRE\s+\(?\s*` + patterns.CoordCapture + `\s*\)?\s+` +
			azRange + `\s+RADIUS\s+` + patterns.Dist)

	// SECTOR BTN AZMAG 360-130 DEG FROM <coord> RADIUS 40KM
	azimuthFirstPattern = regexp.MustCompile(
		`SECTOR\s+(?:BTN\s+)?` + azRange + `\s+` +
			`FROM\s+\(?\s*` + patterns.CoordCapture + `\s*\)?\s+RADIUS\s+` + patterns.Dist)

	// Sector without an azimuth range: circle fallback.
	noAzimuthPattern = regexp.MustCompile(
		`SECTOR\s+CENTRE\s+\(?\s*` + patterns.CoordCapture + `\s*\)?.*?RADIUS\s+` + patterns.Dist)
)

// Matcher matches sector (wedge) areas.
type Matcher struct{}

func init() {
	registry.Register(&Matcher{})
}

func (m *Matcher) Name() string  { return "sector" }
func (m *Matcher) Priority() int { return 20 }

func (m *Matcher) QuickCheck(text string) bool {
	return strings.Contains(text, "SECTOR")
}

func (m *Matcher) Match(text string) registry.Area {
	if g := centreFirstPattern.FindStringSubmatch(text); g != nil {
		return newArea(g[1], g[2], g[3], g[4], g[5])
	}
	if g := azimuthFirstPattern.FindStringSubmatch(text); g != nil {
		return newArea(g[3], g[1], g[2], g[4], g[5])
	}

	// Documented fallback: sector phrasing with a centre and radius but no
	// azimuth range yields a circle.
	if g := noAzimuthPattern.FindStringSubmatch(text); g != nil {
		radiusKM, ok := patterns.Kilometres(g[2], g[3])
		if !ok || radiusKM <= 0 {
			return nil
		}
		center, err := patterns.ParseCoord(g[1])
		if err != nil {
			return nil
		}
		return &circle.Area{Center: center, RadiusKM: radiusKM}
	}
	return nil
}

func newArea(coord, azStart, azEnd, radiusVal, radiusUnit string) registry.Area {
	center, err := patterns.ParseCoord(coord)
	if err != nil {
		return nil
	}
	a1, err := strconv.ParseFloat(azStart, 64)
	if err != nil || a1 > 360 {
		return nil
	}
	a2, err := strconv.ParseFloat(azEnd, 64)
	if err != nil || a2 > 360 {
		return nil
	}
	radiusKM, ok := patterns.Kilometres(radiusVal, radiusUnit)
	if !ok || radiusKM <= 0 {
		return nil
	}
	return &Area{Center: center, AzStart: a1, AzEnd: a2, RadiusKM: radiusKM}
}
