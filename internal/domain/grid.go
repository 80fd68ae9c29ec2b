package domain

import (
	"slices"
)

// DensityGrid is a dense lat/lon count matrix built from spatial bins.
// Columns follow the sorted distinct rounded longitudes and rows the sorted
// distinct rounded latitudes; bins with no points are zero.
//
// DensityGrid satisfies gonum's plotter.GridXYZ.
type DensityGrid struct {
	lons   []int64
	lats   []int64
	counts [][]float64 // [row][col]
}

// NewDensityGrid bins points and lays the counts out on a dense grid.
func NewDensityGrid(points []Point) (*DensityGrid, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	bins := make(map[BinKey]int, len(points))
	latSet := make(map[int64]struct{})
	lonSet := make(map[int64]struct{})
	for _, p := range points {
		k := BinOf(p)
		bins[k]++
		latSet[k.Lat] = struct{}{}
		lonSet[k.Lon] = struct{}{}
	}

	g := &DensityGrid{
		lats: sortedKeys(latSet),
		lons: sortedKeys(lonSet),
	}
	row := make(map[int64]int, len(g.lats))
	for i, v := range g.lats {
		row[v] = i
	}
	col := make(map[int64]int, len(g.lons))
	for i, v := range g.lons {
		col[v] = i
	}

	g.counts = make([][]float64, len(g.lats))
	for i := range g.counts {
		g.counts[i] = make([]float64, len(g.lons))
	}
	for k, n := range bins {
		g.counts[row[k.Lat]][col[k.Lon]] = float64(n)
	}
	return g, nil
}

func sortedKeys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Dims returns the number of columns (longitudes) and rows (latitudes).
func (g *DensityGrid) Dims() (c, r int) { return len(g.lons), len(g.lats) }

// Z returns the count at column c, row r.
func (g *DensityGrid) Z(c, r int) float64 { return g.counts[r][c] }

// X returns the longitude of column c in degrees.
func (g *DensityGrid) X(c int) float64 { return float64(g.lons[c]) / BinScale }

// Y returns the latitude of row r in degrees.
func (g *DensityGrid) Y(r int) float64 { return float64(g.lats[r]) / BinScale }

// Min returns the smallest cell value.
func (g *DensityGrid) Min() float64 {
	m := g.counts[0][0]
	for _, row := range g.counts {
		m = min(m, slices.Min(row))
	}
	return m
}

// Max returns the largest cell value.
func (g *DensityGrid) Max() float64 {
	m := g.counts[0][0]
	for _, row := range g.counts {
		m = max(m, slices.Max(row))
	}
	return m
}

// Total returns the sum of all cells, which equals the number of binned points.
func (g *DensityGrid) Total() int {
	var sum float64
	for _, row := range g.counts {
		for _, v := range row {
			sum += v
		}
	}
	return int(sum)
}
