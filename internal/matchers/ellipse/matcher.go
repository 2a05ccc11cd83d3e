// Package ellipse matches elliptical restriction areas, e.g.
//
//	ELLIPSE CENTRE 584622N0304438E WITH AXES DIMENSIONS 4.0X2.0KM
//	AZM OF MAJOR AXIS 045DEG
//
// The azimuth of the major axis is optional and defaults to 0 (north).
package ellipse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the extracted ellipse parameters. MajorKM and MinorKM are
// full axis lengths in kilometres.
type Area struct {
	Center     orb.Point
	MajorKM    float64
	MinorKM    float64
	AzimuthDeg float64
}

func (a *Area) Kind() string { return geo.ShapeEllipse }

func (a *Area) Build() (*geo.Geometry, error) {
	poly, err := shapes.Ellipse(a.Center, a.MajorKM, a.MinorKM, a.AzimuthDeg)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: poly,
		Meta:     &geo.Meta{Shape: geo.ShapeEllipse},
	}, nil
}

// ELLIPSE CENTRE <coord> WITH AXES DIMENSIONS 4.0X2.0KM [AZM OF MAJOR AXIS 045DEG]
var ellipsePattern = regexp.MustCompile(
	`ELLIPSE\s+CENTRE\s+\(?\s*` + patterns.CoordCapture + `\s*\)?\s+` +
		`WITH\s+AXES\s+DIMENSIONS\s+` +
		`(\d+(?:\.\d+)?)X(\d+(?:\.\d+)?)\s*(KM|NM|M)` +
		`(?:\s+AZM\s+OF\s+MAJOR\s+AXIS\s+(\d{1,3})\s*DEG)?`)

// Matcher matches elliptical areas.
type Matcher struct{}

func init() {
	registry.Register(&Matcher{})
}

func (m *Matcher) Name() string  { return "ellipse" }
func (m *Matcher) Priority() int { return 30 }

func (m *Matcher) QuickCheck(text string) bool {
	return strings.Contains(text, "ELLIPSE")
}

func (m *Matcher) Match(text string) registry.Area {
	g := ellipsePattern.FindStringSubmatch(text)
	if g == nil {
		return nil
	}

	center, err := patterns.ParseCoord(g[1])
	if err != nil {
		return nil
	}
	majorKM, okMajor := patterns.Kilometres(g[2], g[4])
	minorKM, okMinor := patterns.Kilometres(g[3], g[4])
	if !okMajor || !okMinor || majorKM <= 0 || minorKM <= 0 {
		return nil
	}

	var azimuth float64
	if g[5] != "" {
		azimuth, err = strconv.ParseFloat(g[5], 64)
		if err != nil || azimuth > 360 {
			return nil
		}
	}
	return &Area{Center: center, MajorKM: majorKM, MinorKM: minorKM, AzimuthDeg: azimuth}
}
