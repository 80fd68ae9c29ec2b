package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/output"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

// Export writes the cleaned table to CSV and Parquet and checks the Parquet
// file against the table.
type Export struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExport creates the export stage.
func NewExport(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Export {
	return &Export{cfg: cfg, logger: logger, metrics: metrics}
}

func (s *Export) Name() string { return config.StageExport }

func (s *Export) Run(ctx context.Context, wh *warehouse.Warehouse) error {
	table := s.cfg.CleanTable

	csvPath := outPath(s.cfg.OutputDir, ExportCSVFile)
	if err := wh.CopyToCSV(ctx, table, csvPath); err != nil {
		return err
	}
	s.logger.Info("csv export written", "table", table, "path", csvPath)

	parquetPath := outPath(s.cfg.OutputDir, ParquetFile)
	if err := wh.CopyToParquet(ctx, table, parquetPath); err != nil {
		return err
	}

	rows, err := wh.RowCount(ctx, table)
	if err != nil {
		return err
	}
	cols, err := wh.Columns(ctx, table)
	if err != nil {
		return err
	}
	shape, err := output.VerifyParquet(parquetPath, rows, len(cols))
	if err != nil {
		return fmt.Errorf("verify %s: %w", parquetPath, err)
	}
	s.metrics.TableRows.WithLabelValues(table).Set(float64(rows))
	s.logger.Info("parquet export written", "table", table, "path", parquetPath,
		"rows", shape.Rows, "columns", shape.Columns)

	top, err := wh.TopComplaintTypes(ctx, parquetPath, readBackLimit)
	if err != nil {
		return err
	}
	for i, c := range top {
		s.logger.Info("parquet read-back", "rank", i+1, "complaint_type", c.ComplaintType, "issues", c.Issues)
	}
	return nil
}
