package shapes

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"notam_parser/internal/geodesy"
)

var center = orb.Point{33.173, 61.073}

func TestCircle(t *testing.T) {
	poly, err := Circle(center, 8.0)
	if err != nil {
		t.Fatalf("Circle() error: %v", err)
	}

	ring := poly[0]
	if len(ring) != 65 {
		t.Fatalf("circle ring has %d points, want 65", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("circle ring is not closed")
	}

	// Every generated point sits at the declared radius.
	for i, p := range ring[:len(ring)-1] {
		if d := geodesy.Distance(center, p); math.Abs(d-8.0) > 0.01 {
			t.Fatalf("point %d at distance %v, want 8.0", i, d)
		}
	}
}

func TestCircleAreaRoundTrip(t *testing.T) {
	const radius = 50.0
	poly, err := Circle(center, radius)
	if err != nil {
		t.Fatalf("Circle() error: %v", err)
	}

	// Project the ring to flat kilometres around the centre and compare the
	// enclosed area against pi*r^2. The ring winds clockwise, so the signed
	// planar area comes back negative.
	kmPerDeg := geodesy.EarthRadiusKM * math.Pi / 180.0
	cosLat := math.Cos(center.Lat() * math.Pi / 180.0)
	flat := make(orb.Ring, len(poly[0]))
	for i, p := range poly[0] {
		flat[i] = orb.Point{
			(p.Lon() - center.Lon()) * kmPerDeg * cosLat,
			(p.Lat() - center.Lat()) * kmPerDeg,
		}
	}

	got := math.Abs(planar.Area(orb.Polygon{flat}))
	want := math.Pi * radius * radius
	if math.Abs(got-want)/want > 0.02 {
		t.Errorf("enclosed area = %v km2, want within 2%% of %v", got, want)
	}
}

func TestCircleInvalidRadius(t *testing.T) {
	for _, r := range []float64{0, -5} {
		if _, err := Circle(center, r); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Circle(radius=%v) error = %v, want ErrInvalidRange", r, err)
		}
	}
}

func TestEllipse(t *testing.T) {
	// 4x2 km axes: semi-major 2 km, semi-minor 1 km, major axis north.
	poly, err := Ellipse(center, 4.0, 2.0, 0)
	if err != nil {
		t.Fatalf("Ellipse() error: %v", err)
	}

	ring := poly[0]
	if len(ring) != 73 {
		t.Fatalf("ellipse ring has %d points, want 73", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ellipse ring is not closed")
	}

	// First point lies on the major axis at the semi-major distance.
	if d := geodesy.Distance(center, ring[0]); math.Abs(d-2.0) > 0.01 {
		t.Errorf("major-axis point at distance %v, want 2.0", d)
	}
	// A quarter of the way round is the minor axis.
	if d := geodesy.Distance(center, ring[18]); math.Abs(d-1.0) > 0.01 {
		t.Errorf("minor-axis point at distance %v, want 1.0", d)
	}
	// All radii stay within the semi-axis bounds.
	for i, p := range ring[:len(ring)-1] {
		d := geodesy.Distance(center, p)
		if d < 0.99 || d > 2.01 {
			t.Fatalf("point %d at distance %v, outside [1, 2]", i, d)
		}
	}
}

func TestEllipseAzimuthRotation(t *testing.T) {
	poly, err := Ellipse(center, 4.0, 2.0, 90)
	if err != nil {
		t.Fatalf("Ellipse() error: %v", err)
	}
	// With the major axis rotated to 090 the first point lies due east.
	if b := geodesy.InitialBearing(center, poly[0][0]); math.Abs(b-90) > 0.5 {
		t.Errorf("first point bearing = %v, want 90", b)
	}
}

func TestEllipseInvalidAxes(t *testing.T) {
	if _, err := Ellipse(center, 0, 2.0, 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Ellipse(major=0) error = %v, want ErrInvalidRange", err)
	}
	if _, err := Ellipse(center, 4.0, -1, 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Ellipse(minor=-1) error = %v, want ErrInvalidRange", err)
	}
}

func TestArc(t *testing.T) {
	arcCenter := orb.Point{129.77333, 62.09333}
	start := geodesy.Destination(arcCenter, 300, 30)
	end := geodesy.Destination(arcCenter, 120, 30)

	poly, err := Arc(start, arcCenter, 30, true, end)
	if err != nil {
		t.Fatalf("Arc() error: %v", err)
	}

	// start + 32 arc points + center + closing start.
	ring := poly[0]
	if len(ring) != 35 {
		t.Fatalf("arc ring has %d points, want 35", len(ring))
	}
	if ring[0] != start {
		t.Error("ring does not begin at the declared start point")
	}
	if ring[len(ring)-1] != start {
		t.Error("ring is not closed at the declared start point")
	}
	if ring[len(ring)-2] != arcCenter {
		t.Error("penultimate point is not the arc center")
	}

	// Generated arc points sit at the declared radius.
	for i := 1; i <= 32; i++ {
		if d := geodesy.Distance(arcCenter, ring[i]); math.Abs(d-30) > 0.05 {
			t.Fatalf("arc point %d at distance %v, want 30", i, d)
		}
	}

	// Clockwise from 300 to 120 sweeps 180 degrees through north.
	if b := geodesy.InitialBearing(arcCenter, ring[16]); math.Abs(b-30) > 1.0 {
		t.Errorf("midpoint bearing = %v, want ~30 (clockwise sweep)", b)
	}
}

func TestArcAnticlockwise(t *testing.T) {
	arcCenter := orb.Point{129.77333, 62.09333}
	start := geodesy.Destination(arcCenter, 300, 30)
	end := geodesy.Destination(arcCenter, 120, 30)

	poly, err := Arc(start, arcCenter, 30, false, end)
	if err != nil {
		t.Fatalf("Arc() error: %v", err)
	}
	// Anticlockwise from 300 to 120 sweeps 180 degrees through south.
	if b := geodesy.InitialBearing(arcCenter, poly[0][16]); math.Abs(b-210) > 1.0 {
		t.Errorf("midpoint bearing = %v, want ~210 (anticlockwise sweep)", b)
	}
}

func TestSector(t *testing.T) {
	poly, err := Sector(center, 30, 120, 8)
	if err != nil {
		t.Fatalf("Sector() error: %v", err)
	}
	ring := poly[0]

	// 90 degree span at 5 degree steps: 19 steps, 20 rim points, plus the
	// centre at both ends.
	if len(ring) != 22 {
		t.Fatalf("sector ring has %d points, want 22", len(ring))
	}
	if ring[0] != center || ring[len(ring)-1] != center {
		t.Error("sector ring does not start and end at the centre")
	}
	if b := geodesy.InitialBearing(center, ring[1]); math.Abs(b-30) > 0.5 {
		t.Errorf("first rim point bearing = %v, want 30", b)
	}
	if b := geodesy.InitialBearing(center, ring[len(ring)-2]); math.Abs(b-120) > 0.5 {
		t.Errorf("last rim point bearing = %v, want 120", b)
	}
	for i, p := range ring[1 : len(ring)-1] {
		if d := geodesy.Distance(center, p); math.Abs(d-8) > 0.01 {
			t.Fatalf("rim point %d at distance %v, want 8", i, d)
		}
	}
}

func TestSectorWrapAround(t *testing.T) {
	// End azimuth numerically below the start wraps across 360: the span is
	// (144 + 360) - 321 = 183 degrees, not the 177 degree complement.
	poly, err := Sector(center, 321, 144, 8)
	if err != nil {
		t.Fatalf("Sector() error: %v", err)
	}
	ring := poly[0]

	// 183/5 + 1 = 37 steps, 38 rim points, centre at both ends.
	if len(ring) != 40 {
		t.Fatalf("wrap-around sector ring has %d points, want 40", len(ring))
	}

	// The sweep midpoint passes through north, not south.
	mid := ring[len(ring)/2]
	b := geodesy.InitialBearing(center, mid)
	if b > 90 && b < 270 {
		t.Errorf("midpoint bearing = %v, want northern sweep through 360", b)
	}
}

func TestSectorZeroSpanIsCircle(t *testing.T) {
	poly, err := Sector(center, 90, 90, 8)
	if err != nil {
		t.Fatalf("Sector() error: %v", err)
	}
	if len(poly[0]) != 65 {
		t.Errorf("zero-span sector ring has %d points, want 65 (circle)", len(poly[0]))
	}
}

func TestSectorInvalidRadius(t *testing.T) {
	if _, err := Sector(center, 30, 120, 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Sector(radius=0) error = %v, want ErrInvalidRange", err)
	}
}

func TestCorridor(t *testing.T) {
	waypoints := []orb.Point{
		{30.20806, 59.97639},
		{30.20778, 59.96972},
		{30.21861, 59.96917},
	}
	line, err := Corridor(waypoints)
	if err != nil {
		t.Fatalf("Corridor() error: %v", err)
	}
	if len(line) != 3 {
		t.Fatalf("corridor line has %d points, want 3", len(line))
	}
	if line[0] != waypoints[0] || line[2] != waypoints[2] {
		t.Error("corridor line does not preserve waypoint order")
	}

	if _, err := Corridor(waypoints[:1]); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Corridor(1 waypoint) error = %v, want ErrInvalidRange", err)
	}
}

func TestChain(t *testing.T) {
	open := []orb.Point{{30, 59}, {31, 59}, {31, 60}}
	poly, err := Chain(open)
	if err != nil {
		t.Fatalf("Chain() error: %v", err)
	}
	ring := poly[0]
	if len(ring) != 4 {
		t.Fatalf("open chain ring has %d points, want 4", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("chain ring is not closed")
	}

	// An already-closed ring is not double-closed.
	closed := []orb.Point{{30, 59}, {31, 59}, {31, 60}, {30, 59}}
	poly, err = Chain(closed)
	if err != nil {
		t.Fatalf("Chain() error: %v", err)
	}
	if len(poly[0]) != 4 {
		t.Errorf("closed chain ring has %d points, want 4", len(poly[0]))
	}

	if _, err := Chain(open[:2]); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Chain(2 vertices) error = %v, want ErrInvalidRange", err)
	}
}
