package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/chart"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/output"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

const (
	heatmapTitle = "Manhattan Elevator Requests: Heat Map (SQL Bin HQ)"
	heatmapScale = "Complaints per 0.001° bin"
	trendTitle   = "Top 10 Complaint Types Trend (by Year)"
)

// ReportPublisher delivers a trend report to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.TrendReport) error
}

// Geo finds the complaint hotspot in the cleaned table, renders its heatmap,
// and aggregates the hosted sample data around it by year.
type Geo struct {
	cfg       *config.Config
	open      warehouse.Opener
	geocoder  domain.Geocoder
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGeo creates the geo-analysis stage. open is used for the hosted sample
// data handle. Pass a nil geocoder to skip address lookup and a nil publisher
// to skip report publishing.
func NewGeo(cfg *config.Config, open warehouse.Opener, geocoder domain.Geocoder, publisher ReportPublisher, logger *slog.Logger, metrics *observability.Metrics) *Geo {
	return &Geo{
		cfg:       cfg,
		open:      open,
		geocoder:  geocoder,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

func (s *Geo) Name() string { return config.StageGeo }

func (s *Geo) Run(ctx context.Context, wh *warehouse.Warehouse) error {
	points, err := wh.GeoPoints(ctx, s.cfg.CleanTable, s.cfg.GeoBorough, s.cfg.GeoComplaintType)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("%s %q complaints in %s: %w", s.cfg.CleanTable, s.cfg.GeoComplaintType, s.cfg.GeoBorough, domain.ErrNoPoints)
	}

	hq, err := s.locateHQ(ctx, points)
	if err != nil {
		return err
	}
	if err := s.renderHeatmap(points, hq.Centroid); err != nil {
		return err
	}

	table, err := s.yearlyAround(ctx, hq.Centroid)
	if err != nil {
		return err
	}
	pivotPath := outPath(s.cfg.OutputDir, PivotCSVFile)
	if err := output.WriteYearlyCSV(pivotPath, table); err != nil {
		return err
	}
	s.logger.Info("yearly pivot written", "path", pivotPath,
		"complaint_types", len(table.Rows), "years", len(table.Years))

	if err := s.renderTrend(pivotPath); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, domain.NewTrendReport(table, hq.Centroid, s.cfg.RadiusMiles)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Geo) locateHQ(ctx context.Context, points []domain.Point) (domain.Headquarters, error) {
	hs, err := domain.FindHotspot(points)
	if err != nil {
		return domain.Headquarters{}, err
	}
	s.metrics.HotspotComplaints.Set(float64(hs.Count))

	hq := domain.LocateHeadquarters(ctx, hs, s.geocoder, s.logger)
	attrs := []any{
		"lat", fmt.Sprintf("%.6f", hq.Centroid.Lat),
		"lon", fmt.Sprintf("%.6f", hq.Centroid.Lon),
		"bin_lat", hs.Bin.LatDeg(),
		"bin_lon", hs.Bin.LonDeg(),
		"complaints", hs.Count,
		"maps_url", hq.MapsURL,
	}
	if hq.Address != "" {
		attrs = append(attrs, "address", hq.Address, "place", hq.PlaceName, "confidence", hq.GeoConfidence)
	}
	if hq.GeoSource != "" {
		attrs = append(attrs, "geo_source", hq.GeoSource)
	}
	s.logger.Info("hotspot located", attrs...)

	s.logger.Info("complaints near hotspot",
		"radius_miles", s.cfg.RadiusMiles,
		"within", domain.CountWithin(points, hq.Centroid, s.cfg.RadiusMiles),
		"total", len(points),
	)
	return hq, nil
}

func (s *Geo) renderHeatmap(points []domain.Point, hq domain.Point) error {
	grid, err := domain.NewDensityGrid(points)
	if err != nil {
		return err
	}
	cols, rows := grid.Dims()

	path := outPath(s.cfg.OutputDir, HeatmapFile)
	err = chart.Heatmap(path, chart.HeatmapInput{
		Grid:        grid,
		HQ:          hq,
		Radius:      domain.RadiusCircle(hq, s.cfg.RadiusMiles),
		RadiusMiles: s.cfg.RadiusMiles,
		Title:       heatmapTitle,
		ScaleLabel:  heatmapScale,
	}, chart.DefaultHeatmapSize)
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	s.logger.Info("heatmap written", "path", path, "grid_cols", cols, "grid_rows", rows, "points", grid.Total())
	return nil
}

// yearlyAround opens the hosted sample data and pivots its complaints
// within the configured radius of center.
func (s *Geo) yearlyAround(ctx context.Context, center domain.Point) (domain.YearlyTable, error) {
	hosted, err := s.open(ctx, warehouse.SampleTarget(s.cfg))
	if err != nil {
		return domain.YearlyTable{}, err
	}
	defer func() {
		if err := hosted.Close(); err != nil {
			s.logger.Warn("close sample warehouse", "error", err)
		}
	}()

	counts, err := hosted.YearlyInRadius(ctx, s.cfg.SampleTable, center, s.cfg.RadiusMiles)
	if err != nil {
		return domain.YearlyTable{}, err
	}

	table := domain.PivotYearly(counts)
	if !table.SortByYear(s.cfg.SortYear) {
		s.logger.Info("sort year not present, keeping alphabetical order", "year", s.cfg.SortYear)
	}
	return table, nil
}

// renderTrend charts the top complaint types from the pivot file on disk.
func (s *Geo) renderTrend(pivotPath string) error {
	table, err := output.ReadYearlyCSV(pivotPath)
	if err != nil {
		return err
	}
	table.SortByYear(s.cfg.SortYear)
	top := table.Top(trendSeries)
	if len(top.Rows) == 0 {
		s.logger.Warn("no complaints near hotspot, trend chart skipped", "pivot", pivotPath)
		return nil
	}

	path := outPath(s.cfg.OutputDir, TrendChartFile)
	if err := chart.Trend(path, trendTitle, top, chart.DefaultTrendSize); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	s.logger.Info("trend chart written", "path", path, "series", len(top.Rows))
	return nil
}
