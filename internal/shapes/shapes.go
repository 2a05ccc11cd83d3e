// Package shapes turns shape parameters extracted from restriction text
// into coordinate rings and lines. All curved and angular boundaries are
// generated through the geodesy package so every builder shares one
// distance model and closure convention.
package shapes

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"notam_parser/internal/geodesy"
)

// ErrInvalidRange is returned for non-positive radii or axes and for vertex
// sequences too short to form the requested shape. Matchers treat it as a
// match failure so resolution falls through to the next stage.
var ErrInvalidRange = errors.New("invalid shape range")

const (
	circlePoints  = 64
	ellipsePoints = 72
	arcSteps      = 32

	sectorStepDeg  = 5.0
	sectorMinSteps = 2
)

// Circle generates a 65-point closed ring (64 destination points plus the
// closing duplicate) around center at the given radius.
func Circle(center orb.Point, radiusKM float64) (orb.Polygon, error) {
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius %.3f km", ErrInvalidRange, radiusKM)
	}
	ring := make(orb.Ring, 0, circlePoints+1)
	for i := 0; i < circlePoints; i++ {
		brng := 360.0 * float64(i) / circlePoints
		ring = append(ring, geodesy.Destination(center, brng, radiusKM))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

// Ellipse generates a 73-point closed ring approximating an oriented
// ellipse. majorKM and minorKM are full axis lengths; azimuthDeg is the
// heading of the major axis clockwise from north (0 = north).
func Ellipse(center orb.Point, majorKM, minorKM, azimuthDeg float64) (orb.Polygon, error) {
	if majorKM <= 0 || minorKM <= 0 {
		return nil, fmt.Errorf("%w: axes %.3fx%.3f km", ErrInvalidRange, majorKM, minorKM)
	}
	a := majorKM / 2.0
	b := minorKM / 2.0

	ring := make(orb.Ring, 0, ellipsePoints+1)
	for i := 0; i < ellipsePoints; i++ {
		theta := 360.0 * float64(i) / ellipsePoints
		// Polar radius of the ellipse at angle theta from the major axis.
		sin, cos := math.Sincos(theta * math.Pi / 180.0)
		r := a * b / math.Sqrt((b*cos)*(b*cos)+(a*sin)*(a*sin))
		ring = append(ring, geodesy.Destination(center, theta+azimuthDeg, r))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

// Arc generates a pie-wedge polygon for a boundary segment that travels
// along an arc: the declared start point, 32 points stepping from the
// start bearing to the end bearing in the declared direction, the center,
// and the closing duplicate of the start. Bearings are computed from the
// center to the declared start and end points; the declared radius fixes
// the distance of the generated arc points.
func Arc(start, center orb.Point, radiusKM float64, clockwise bool, end orb.Point) (orb.Polygon, error) {
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius %.3f km", ErrInvalidRange, radiusKM)
	}

	startBrng := geodesy.InitialBearing(center, start)
	endBrng := geodesy.InitialBearing(center, end)

	span := math.Mod(endBrng-startBrng+360.0, 360.0)
	dir := 1.0
	if !clockwise {
		span = math.Mod(startBrng-endBrng+360.0, 360.0)
		dir = -1.0
	}

	ring := make(orb.Ring, 0, arcSteps+3)
	ring = append(ring, start)
	for i := 1; i <= arcSteps; i++ {
		brng := startBrng + dir*span*float64(i)/arcSteps
		ring = append(ring, geodesy.Destination(center, brng, radiusKM))
	}
	ring = append(ring, center, start)
	return orb.Polygon{ring}, nil
}

// Sector generates a wedge polygon between two azimuths at the given
// radius. Azimuths are clockwise from north; an end numerically below the
// start wraps across 360, so the span is (end + 360) - start rather than
// the shorter complement. A zero span degenerates to a full circle.
func Sector(center orb.Point, azStartDeg, azEndDeg, radiusKM float64) (orb.Polygon, error) {
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius %.3f km", ErrInvalidRange, radiusKM)
	}

	azStart := math.Mod(math.Mod(azStartDeg, 360.0)+360.0, 360.0)
	azEnd := math.Mod(math.Mod(azEndDeg, 360.0)+360.0, 360.0)
	span := math.Mod(azEnd-azStart+360.0, 360.0)
	if span == 0 {
		return Circle(center, radiusKM)
	}

	steps := int(span/sectorStepDeg) + 1
	if steps < sectorMinSteps {
		steps = sectorMinSteps
	}

	ring := make(orb.Ring, 0, steps+3)
	ring = append(ring, center)
	for i := 0; i <= steps; i++ {
		brng := azStart + span*float64(i)/float64(steps)
		ring = append(ring, geodesy.Destination(center, brng, radiusKM))
	}
	ring = append(ring, center)
	return orb.Polygon{ring}, nil
}

// Corridor generates the centre line of a corridor through the declared
// waypoints. The corridor width is retained as metadata by the caller
// rather than buffered into a polygon.
func Corridor(waypoints []orb.Point) (orb.LineString, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: corridor needs at least 2 waypoints, got %d", ErrInvalidRange, len(waypoints))
	}
	line := make(orb.LineString, len(waypoints))
	copy(line, waypoints)
	return line, nil
}

// Chain generates a polygon from an ordered vertex sequence, appending the
// closing duplicate when the declared ring is open.
func Chain(vertices []orb.Point) (orb.Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidRange, len(vertices))
	}
	ring := make(orb.Ring, len(vertices), len(vertices)+1)
	copy(ring, vertices)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}, nil
}
