// Package chain matches bare coordinate-chain polygons: an ordered list of
// three or more coordinates joined by dashes with no preceding shape
// keyword, e.g.
//
//	AREA: 595835N0301229E-595811N0301228E-595809N0301307E-595835N0301229E
//
// It registers as a catch-all so the coordinate lists inside arc and
// corridor text are never claimed before their own matchers run.
package chain

import (
	"github.com/paulmach/orb"

	"notam_parser/internal/geo"
	"notam_parser/internal/patterns"
	"notam_parser/internal/registry"
	"notam_parser/internal/shapes"
)

// Area holds the ordered vertex sequence of a coordinate-chain polygon.
type Area struct {
	Vertices []orb.Point
}

func (a *Area) Kind() string { return geo.ShapePolygon }

func (a *Area) Build() (*geo.Geometry, error) {
	poly, err := shapes.Chain(a.Vertices)
	if err != nil {
		return nil, err
	}
	return &geo.Geometry{
		Geometry: poly,
		Meta:     &geo.Meta{Shape: geo.ShapePolygon},
	}, nil
}

// Matcher matches bare coordinate chains.
type Matcher struct{}

func init() {
	registry.RegisterCatchAll(&Matcher{})
}

func (m *Matcher) Name() string  { return "chain" }
func (m *Matcher) Priority() int { return 60 }

func (m *Matcher) QuickCheck(text string) bool { return true }

func (m *Matcher) Match(text string) registry.Area {
	g := patterns.CoordChainPattern.FindStringSubmatch(text)
	if g == nil {
		return nil
	}
	vertices := patterns.ParseCoordChain(g[1])
	if len(vertices) < 3 {
		return nil
	}
	return &Area{Vertices: vertices}
}
