package chart

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
)

var testSize = Size{Width: 4 * vg.Inch, Height: 3 * vg.Inch, DPI: 50}

func decodePNG(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func heatmapInput(t *testing.T, points []domain.Point) HeatmapInput {
	t.Helper()
	grid, err := domain.NewDensityGrid(points)
	require.NoError(t, err)
	hs, err := domain.FindHotspot(points)
	require.NoError(t, err)
	return HeatmapInput{
		Grid:        grid,
		HQ:          hs.Centroid,
		Radius:      domain.RadiusCircle(hs.Centroid, 0.5),
		RadiusMiles: 0.5,
		Title:       "Elevator heat map",
		ScaleLabel:  "Complaints per 0.001° bin",
	}
}

func TestHeatmap(t *testing.T) {
	points := []domain.Point{
		{Lat: 40.7501, Lon: -73.9902},
		{Lat: 40.7502, Lon: -73.9901},
		{Lat: 40.7511, Lon: -73.9881},
		{Lat: 40.7620, Lon: -73.9700},
	}
	path := filepath.Join(t.TempDir(), "heatmap.png")

	require.NoError(t, Heatmap(path, heatmapInput(t, points), testSize))

	w, h := decodePNG(t, path)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestHeatmap_SingleCell(t *testing.T) {
	points := []domain.Point{{Lat: 40.75, Lon: -73.99}}
	path := filepath.Join(t.TempDir(), "heatmap.png")

	require.NoError(t, Heatmap(path, heatmapInput(t, points), testSize))

	w, h := decodePNG(t, path)
	assert.Positive(t, w)
	assert.Positive(t, h)
}

func TestHeatmap_NilGrid(t *testing.T) {
	err := Heatmap(filepath.Join(t.TempDir(), "heatmap.png"), HeatmapInput{}, testSize)
	require.ErrorIs(t, err, domain.ErrNoPoints)
}

func TestHeatmap_BadPath(t *testing.T) {
	in := heatmapInput(t, []domain.Point{{Lat: 40.75, Lon: -73.99}})
	err := Heatmap(filepath.Join(t.TempDir(), "missing", "heatmap.png"), in, testSize)
	require.Error(t, err)
}

func trendTable() domain.YearlyTable {
	return domain.YearlyTable{
		Years: []string{"2021", "2022", "2023"},
		Rows: []domain.YearlyRow{
			{ComplaintType: "HEAT/HOT WATER", Counts: []int64{300, 280, 310}},
			{ComplaintType: "Noise - Residential", Counts: []int64{120, 150, 90}},
			{ComplaintType: "Elevator", Counts: []int64{7, 0, 12}},
		},
	}
}

func TestTrend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trend.png")

	require.NoError(t, Trend(path, "Top complaint types", trendTable(), testSize))

	w, h := decodePNG(t, path)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestTrend_ManySeries(t *testing.T) {
	table := domain.YearlyTable{Years: []string{"2023"}}
	for i := range 10 {
		table.Rows = append(table.Rows, domain.YearlyRow{
			ComplaintType: string(rune('A' + i)),
			Counts:        []int64{int64(i)},
		})
	}
	path := filepath.Join(t.TempDir(), "trend.png")

	require.NoError(t, Trend(path, "Top complaint types", table, testSize))
}

func TestTrend_Empty(t *testing.T) {
	tests := []struct {
		name  string
		table domain.YearlyTable
	}{
		{"no rows", domain.YearlyTable{Years: []string{"2023"}}},
		{"no years", domain.YearlyTable{Rows: []domain.YearlyRow{{ComplaintType: "Elevator"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Trend(filepath.Join(t.TempDir(), "trend.png"), "t", tt.table, testSize)
			require.ErrorIs(t, err, ErrNoSeries)
		})
	}
}

func TestTrend_BadPath(t *testing.T) {
	err := Trend(filepath.Join(t.TempDir(), "missing", "trend.png"), "t", trendTable(), testSize)
	require.Error(t, err)
}
