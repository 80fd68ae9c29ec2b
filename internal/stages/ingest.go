package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

// Fetcher downloads a CSV export to a local file and reports its size.
type Fetcher interface {
	FetchCSV(ctx context.Context, url, dest string) (int64, error)
}

// Ingest downloads the raw snapshot, loads it, and builds the cleaned table.
type Ingest struct {
	cfg     *config.Config
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewIngest creates the ingest-and-clean stage.
func NewIngest(cfg *config.Config, fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Ingest {
	return &Ingest{cfg: cfg, fetcher: fetcher, logger: logger, metrics: metrics}
}

func (s *Ingest) Name() string { return config.StageIngest }

func (s *Ingest) Run(ctx context.Context, wh *warehouse.Warehouse) error {
	rawPath := outPath(s.cfg.OutputDir, RawCSVFile)
	n, err := s.fetcher.FetchCSV(ctx, s.cfg.SocrataQueryURL, rawPath)
	if err != nil {
		return fmt.Errorf("fetch raw csv: %w", err)
	}
	s.logger.Info("raw csv downloaded", "path", rawPath, "bytes", n)

	if err := wh.LoadCSV(ctx, warehouse.RawTable, rawPath); err != nil {
		return err
	}
	if err := s.recordRows(ctx, wh, warehouse.RawTable); err != nil {
		return err
	}

	table := s.cfg.CleanTable
	if err := wh.FilterClean(ctx, warehouse.RawTable, table, s.cfg.ComplaintFilter, s.cfg.FilterYear); err != nil {
		return err
	}
	if err := s.normalizeColumns(ctx, wh, table); err != nil {
		return err
	}
	if err := wh.AddClosedInDays(ctx, table); err != nil {
		return err
	}
	if err := s.describe(ctx, wh, table); err != nil {
		return err
	}

	cleanPath := outPath(s.cfg.OutputDir, cleanCSVFile(table))
	if err := wh.CopyToCSV(ctx, table, cleanPath); err != nil {
		return err
	}
	s.logger.Info("cleaned table written", "table", table, "path", cleanPath)

	return s.recordRows(ctx, wh, table)
}

// normalizeColumns renames every column whose normalized form differs. The
// whole plan is checked for collisions before any rename is issued.
func (s *Ingest) normalizeColumns(ctx context.Context, wh *warehouse.Warehouse, table string) error {
	cols, err := wh.Columns(ctx, table)
	if err != nil {
		return err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	renames, err := domain.PlanRenames(names)
	if err != nil {
		return fmt.Errorf("normalize columns of %s: %w", table, err)
	}
	for _, r := range renames {
		if err := wh.RenameColumn(ctx, table, r.From, r.To); err != nil {
			return err
		}
		s.logger.Debug("column renamed", "table", table, "from", r.From, "to", r.To)
	}
	s.logger.Info("columns normalized", "table", table, "columns", len(names), "renamed", len(renames))
	return nil
}

func (s *Ingest) describe(ctx context.Context, wh *warehouse.Warehouse, table string) error {
	cols, err := wh.Columns(ctx, table)
	if err != nil {
		return err
	}
	for _, c := range cols {
		s.logger.Info("column", "table", table, "name", c.Name, "type", c.Type)
	}

	samples, err := wh.DurationSamples(ctx, table, durationPreview)
	if err != nil {
		return err
	}
	for _, smp := range samples {
		attrs := []any{"created", smp.Created, "closed", nil, "closed_in_days", nil}
		if smp.Closed.Valid {
			attrs[3] = smp.Closed.String
		}
		if smp.ClosedInDays.Valid {
			attrs[5] = smp.ClosedInDays.Int64
		}
		s.logger.Info("closure sample", attrs...)
	}
	return nil
}

func (s *Ingest) recordRows(ctx context.Context, wh *warehouse.Warehouse, table string) error {
	n, err := wh.RowCount(ctx, table)
	if err != nil {
		return err
	}
	s.metrics.TableRows.WithLabelValues(table).Set(float64(n))
	s.logger.Info("table rebuilt", "table", table, "rows", n)
	return nil
}
