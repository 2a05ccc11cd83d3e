// Package geodesy implements great-circle math on a spherical Earth model.
//
// Every shape builder routes through these functions so all generated
// geometry shares one distance model. The radius constant is the single
// source of truth; builders must not carry their own.
package geodesy

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKM is the mean Earth radius used for all great-circle math.
const EarthRadiusKM = 6371.0

// Destination computes the point reached by travelling distanceKM along the
// initial bearing bearingDeg (clockwise from north) from origin.
func Destination(origin orb.Point, bearingDeg, distanceKM float64) orb.Point {
	lat1 := radians(origin.Lat())
	lon1 := radians(origin.Lon())
	brng := radians(bearingDeg)
	d := distanceKM / EarthRadiusKM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return orb.Point{degrees(lon2), degrees(lat2)}
}

// InitialBearing computes the initial great-circle bearing from a to b in
// degrees, normalized to [0, 360).
func InitialBearing(a, b orb.Point) float64 {
	lat1 := radians(a.Lat())
	lat2 := radians(b.Lat())
	dLon := radians(b.Lon() - a.Lon())

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(degrees(math.Atan2(y, x))+360.0, 360.0)
}

// Distance computes the haversine great-circle distance between a and b
// in kilometres.
func Distance(a, b orb.Point) float64 {
	lat1 := radians(a.Lat())
	lat2 := radians(b.Lat())
	dLat := radians(b.Lat() - a.Lat())
	dLon := radians(b.Lon() - a.Lon())

	// Keep dateline-crossing pairs on the short path.
	for dLon > math.Pi {
		dLon -= 2 * math.Pi
	}
	for dLon < -math.Pi {
		dLon += 2 * math.Pi
	}

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }
func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
