// Package app wires configuration, observability, adapters and stages into
// the command-line entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/adapter/kafka"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/adapter/mapbox"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/adapter/socrata"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/pipeline"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/stages"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

const (
	socrataTimeout = 10 * time.Minute
	pushTimeout    = 10 * time.Second
)

// Main runs the named stages in order and returns the process exit code.
func Main(names ...string) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	for _, name := range names {
		if err := cfg.Validate(name); err != nil {
			slog.Error("invalid config", "stage", name, "error", err)
			return 1
		}
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := Run(ctx, cfg, names, logger, metrics)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, observability.PushJob, prometheus.DefaultGatherer); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
		return 1
	}
	return 0
}

// Run builds the named stages and executes them against the primary
// warehouse.
func Run(ctx context.Context, cfg *config.Config, names []string, logger *slog.Logger, metrics *observability.Metrics) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	open := warehouse.NewOpener(logger, metrics)
	seq := make([]stages.Stage, 0, len(names))
	var closers []func() error
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close adapter", "error", err)
			}
		}
	}()

	for _, name := range names {
		switch name {
		case config.StageIngest:
			client := socrata.NewClient(cfg.SocrataToken, socrataTimeout, metrics, logger)
			seq = append(seq, stages.NewIngest(cfg, client, logger, metrics))
		case config.StageExport:
			seq = append(seq, stages.NewExport(cfg, logger, metrics))
		case config.StageGeo:
			var geocoder domain.Geocoder
			if cfg.MapboxEnabled() {
				geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
				logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
			} else {
				logger.Info("mapbox geocoding disabled")
			}

			var publisher stages.ReportPublisher
			if cfg.KafkaEnabled() {
				writer := kafka.NewWriter(cfg, metrics, logger)
				closers = append(closers, writer.Close)
				publisher = writer
				logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
			}

			seq = append(seq, stages.NewGeo(cfg, open, geocoder, publisher, logger, metrics))
		default:
			return fmt.Errorf("unknown stage %q", name)
		}
	}

	runner := pipeline.New(open, warehouse.PrimaryTarget(cfg), nil, logger, metrics)
	results, err := runner.Run(ctx, seq...)
	for _, r := range results {
		logger.Info("stage summary", "stage", r.Stage, "duration", r.Duration, "ok", r.Err == nil)
	}
	return err
}
