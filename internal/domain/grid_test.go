package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

var _ plotter.GridXYZ = (*DensityGrid)(nil)

func TestNewDensityGrid(t *testing.T) {
	points := []Point{
		{Lat: 40.7001, Lon: -74.0002},
		{Lat: 40.6998, Lon: -73.9999},
		{Lat: 40.800, Lon: -74.100},
		{Lat: 40.800, Lon: -74.000},
	}

	g, err := NewDensityGrid(points)
	require.NoError(t, err)

	c, r := g.Dims()
	assert.Equal(t, 2, c, "distinct rounded longitudes")
	assert.Equal(t, 2, r, "distinct rounded latitudes")

	assert.InDelta(t, -74.100, g.X(0), 1e-12)
	assert.InDelta(t, -74.000, g.X(1), 1e-12)
	assert.InDelta(t, 40.700, g.Y(0), 1e-12)
	assert.InDelta(t, 40.800, g.Y(1), 1e-12)

	assert.Equal(t, 0.0, g.Z(0, 0), "missing bin is zero")
	assert.Equal(t, 2.0, g.Z(1, 0))
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 1.0, g.Z(1, 1))

	assert.Equal(t, 0.0, g.Min())
	assert.Equal(t, 2.0, g.Max())
	assert.Equal(t, len(points), g.Total())
}

func TestNewDensityGrid_DimsMatchDistinctBins(t *testing.T) {
	var points []Point
	for i := range 50 {
		points = append(points, Point{
			Lat: 40.70 + float64(i%7)*0.001,
			Lon: -74.00 + float64(i%5)*0.001,
		})
	}

	g, err := NewDensityGrid(points)
	require.NoError(t, err)

	c, r := g.Dims()
	assert.Equal(t, 5, c)
	assert.Equal(t, 7, r)
	assert.Equal(t, 50, g.Total())
}

func TestNewDensityGrid_SinglePoint(t *testing.T) {
	g, err := NewDensityGrid([]Point{{Lat: 40.75, Lon: -73.99}})
	require.NoError(t, err)

	c, r := g.Dims()
	assert.Equal(t, 1, c)
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, g.Total())
}

func TestNewDensityGrid_Empty(t *testing.T) {
	_, err := NewDensityGrid(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}
