package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
)

// DefaultHeatmapSize is a 7x9 inch portrait figure at 200 DPI.
var DefaultHeatmapSize = Size{Width: 7 * vg.Inch, Height: 9 * vg.Inch, DPI: 200}

const (
	paletteColors = 255
	colorBarWidth = 1.1 * vg.Inch
)

var (
	hqColor     = color.RGBA{R: 220, A: 255}
	radiusColor = color.RGBA{R: 30, G: 90, B: 230, A: 255}
)

// HeatmapInput is everything drawn on the density heatmap.
type HeatmapInput struct {
	Grid        *domain.DensityGrid
	HQ          domain.Point
	Radius      []domain.Point
	RadiusMiles float64
	Title       string
	ScaleLabel  string
}

// Heatmap renders the density grid with the HQ marker and radius overlay to
// a PNG at path. A vertical colour scale is drawn in a strip on the right.
func Heatmap(path string, in HeatmapInput, size Size) error {
	if in.Grid == nil {
		return fmt.Errorf("heatmap: %w", domain.ErrNoPoints)
	}

	p := plot.New()
	p.Title.Text = in.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	pal := moreland.BlackBody().Palette(paletteColors)
	hm := plotter.NewHeatMap(in.Grid, pal)
	if hm.Max <= hm.Min {
		// A flat grid would map every cell to NaN.
		hm.Min = hm.Max - 1
	}
	p.Add(hm)

	circle, err := plotter.NewLine(pointsXY(in.Radius))
	if err != nil {
		return fmt.Errorf("radius overlay: %w", err)
	}
	circle.Color = radiusColor
	circle.Width = vg.Points(1.5)
	p.Add(circle)

	marker, err := plotter.NewScatter(pointsXY([]domain.Point{in.HQ}))
	if err != nil {
		return fmt.Errorf("hq marker: %w", err)
	}
	marker.GlyphStyle.Color = hqColor
	marker.GlyphStyle.Shape = draw.CrossGlyph{}
	marker.GlyphStyle.Radius = vg.Points(6)
	p.Add(marker)

	p.Legend.Top = true
	p.Legend.Add("HQ", marker)
	p.Legend.Add(fmt.Sprintf("%g mi radius", in.RadiusMiles), circle)

	scale := moreland.BlackBody()
	scale.SetMin(hm.Min)
	scale.SetMax(hm.Max)
	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = in.ScaleLabel
	bar.Add(&plotter.ColorBar{ColorMap: scale, Vertical: true})

	return renderPNG(path, size, func(dc draw.Canvas) error {
		p.Draw(draw.Crop(dc, 0, -colorBarWidth, 0, 0))
		bar.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-colorBarWidth, 0, vg.Inch/2, -vg.Inch/2))
		return nil
	})
}

func pointsXY(pts []domain.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X = p.Lon
		xys[i].Y = p.Lat
	}
	return xys
}
