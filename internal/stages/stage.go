// Package stages implements the three pipeline steps: ingest-and-clean,
// export, and geo-analysis. Each stage receives a warehouse handle owned by
// the caller and writes its artifacts under the configured output directory.
package stages

import (
	"context"
	"path/filepath"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

// Artifact file names, relative to OUTPUT_DIR.
const (
	RawCSVFile      = "nyc_elevator_request_raw.csv"
	ExportCSVFile   = "clean_elevator_requests.csv"
	ParquetFile     = "clean_elevator_requests.parquet"
	HeatmapFile     = "manhattan_elevator_heatmap.png"
	PivotCSVFile    = "complaint_analysis_by_year.csv"
	TrendChartFile  = "complaint_trends_top10.png"
	trendSeries     = 10
	readBackLimit   = 10
	durationPreview = 10
)

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, wh *warehouse.Warehouse) error
}

// cleanCSVFile is named after the cleaned table.
func cleanCSVFile(table string) string { return table + ".csv" }

func outPath(dir, name string) string { return filepath.Join(dir, name) }
