package domain

import (
	"errors"
	"math"
)

// ErrNoPoints is returned when a geo selection yields no coordinates.
var ErrNoPoints = errors.New("no points matched the geo selection")

// BinScale is the number of bins per degree (3 decimal places, about 0.001°).
const BinScale = 1000

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64 `db:"latitude" json:"lat"`
	Lon float64 `db:"longitude" json:"lon"`
}

// BinKey identifies a spatial bin in thousandths of a degree. Integer keys
// avoid float equality when grouping.
type BinKey struct {
	Lat int64
	Lon int64
}

// BinOf rounds a point to its spatial bin, half away from zero.
func BinOf(p Point) BinKey {
	return BinKey{
		Lat: int64(math.Round(p.Lat * BinScale)),
		Lon: int64(math.Round(p.Lon * BinScale)),
	}
}

// LatDeg returns the bin's rounded latitude in degrees.
func (k BinKey) LatDeg() float64 { return float64(k.Lat) / BinScale }

// LonDeg returns the bin's rounded longitude in degrees.
func (k BinKey) LonDeg() float64 { return float64(k.Lon) / BinScale }

// Bounds is the bounding box of a set of points.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

func (b *Bounds) extend(p Point) {
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
}

// Hotspot is the densest spatial bin of a run. Centroid is the mean of the
// unrounded member coordinates and becomes the HQ for distance queries.
type Hotspot struct {
	Bin      BinKey
	Count    int
	Centroid Point
	Bounds   Bounds
}

type binAcc struct {
	count  int
	sumLat float64
	sumLon float64
	bounds Bounds
}

// FindHotspot groups points by bin and returns the bin with the highest count.
// Ties go to the lowest latitude bin, then the lowest longitude bin.
func FindHotspot(points []Point) (Hotspot, error) {
	if len(points) == 0 {
		return Hotspot{}, ErrNoPoints
	}

	bins := make(map[BinKey]*binAcc)
	for _, p := range points {
		k := BinOf(p)
		acc, ok := bins[k]
		if !ok {
			acc = &binAcc{bounds: Bounds{MinLat: p.Lat, MaxLat: p.Lat, MinLon: p.Lon, MaxLon: p.Lon}}
			bins[k] = acc
		}
		acc.count++
		acc.sumLat += p.Lat
		acc.sumLon += p.Lon
		acc.bounds.extend(p)
	}

	var (
		best    BinKey
		bestAcc *binAcc
	)
	for k, acc := range bins {
		if bestAcc == nil || acc.count > bestAcc.count ||
			(acc.count == bestAcc.count && lessBin(k, best)) {
			best, bestAcc = k, acc
		}
	}

	n := float64(bestAcc.count)
	return Hotspot{
		Bin:      best,
		Count:    bestAcc.count,
		Centroid: Point{Lat: bestAcc.sumLat / n, Lon: bestAcc.sumLon / n},
		Bounds:   bestAcc.bounds,
	}, nil
}

func lessBin(a, b BinKey) bool {
	if a.Lat != b.Lat {
		return a.Lat < b.Lat
	}
	return a.Lon < b.Lon
}

// CountWithin returns how many points lie within radiusMiles of center.
func CountWithin(points []Point, center Point, radiusMiles float64) int {
	n := 0
	for _, p := range points {
		if HaversineMiles(center, p) <= radiusMiles {
			n++
		}
	}
	return n
}
