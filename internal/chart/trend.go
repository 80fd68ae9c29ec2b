package chart

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
)

// ErrNoSeries is returned when a trend chart has nothing to plot.
var ErrNoSeries = errors.New("trend chart has no series")

// DefaultTrendSize is a 13x6 inch landscape figure at 100 DPI. The rightmost
// three inches hold the legend.
var DefaultTrendSize = Size{Width: 13 * vg.Inch, Height: 6 * vg.Inch, DPI: 100}

const legendWidth = 3 * vg.Inch

// Trend renders one line per table row across the year columns, with the
// legend drawn outside the plot area.
func Trend(path, title string, table domain.YearlyTable, size Size) error {
	if len(table.Rows) == 0 || len(table.Years) == 0 {
		return ErrNoSeries
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Complaints"
	p.Y.Min = 0
	p.NominalX(table.Years...)
	p.Add(plotter.NewGrid())

	legend := plot.NewLegend()
	legend.Top = true
	legend.Left = true
	legend.XOffs = vg.Points(6)

	for i, row := range table.Rows {
		xys := make(plotter.XYs, len(table.Years))
		for j, n := range row.Counts {
			xys[j].X = float64(j)
			xys[j].Y = float64(n)
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", row.ComplaintType, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		legend.Add(row.ComplaintType, line, points)
	}

	return renderPNG(path, size, func(dc draw.Canvas) error {
		p.Draw(draw.Crop(dc, 0, -legendWidth, 0, 0))
		legend.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-legendWidth, 0, 0, -vg.Inch/2))
		return nil
	})
}
