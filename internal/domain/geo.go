package domain

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMiles is the mean Earth radius used for all distance math,
// in Go and in SQL.
const EarthRadiusMiles = 3958.7613

// MilesPerDegreeLat is the flat-earth approximation used for overlays.
const MilesPerDegreeLat = 69.0

// CirclePoints is the number of vertices in a radius overlay.
const CirclePoints = 360

// HaversineMiles returns the great-circle distance between a and b in miles.
func HaversineMiles(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * EarthRadiusMiles
}

// RadiusCircle approximates a circle of radiusMiles around center using a
// flat-earth projection: 1° latitude is 69 mi and 1° longitude is
// 69·cos(lat) mi. The angles span [0, 2π] inclusive so the curve closes.
// Only meaningful for small radii away from the poles.
func RadiusCircle(center Point, radiusMiles float64) []Point {
	dLat := radiusMiles / MilesPerDegreeLat
	dLon := radiusMiles / (MilesPerDegreeLat * math.Cos(center.Lat*math.Pi/180))

	pts := make([]Point, CirclePoints)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(CirclePoints-1)
		pts[i] = Point{
			Lat: center.Lat + dLat*math.Sin(theta),
			Lon: center.Lon + dLon*math.Cos(theta),
		}
	}
	return pts
}
