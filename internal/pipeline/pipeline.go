package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/stages"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/warehouse"
)

// StageResult records how one stage ended.
type StageResult struct {
	Stage    string
	Duration time.Duration
	Err      error
}

// Runner executes stages in order. Each stage gets its own warehouse handle,
// opened on entry and closed on every exit path.
type Runner struct {
	open    warehouse.Opener
	target  warehouse.Target
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Runner. A nil clock uses the real clock.
func New(open warehouse.Opener, target warehouse.Target, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		open:    open,
		target:  target,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes the stages sequentially and stops at the first failure. The
// returned results cover every stage that was started, including the failed one.
func (r *Runner) Run(ctx context.Context, seq ...stages.Stage) ([]StageResult, error) {
	names := make([]string, len(seq))
	for i, s := range seq {
		names[i] = s.Name()
	}
	r.logger.Info("pipeline started", "stages", names, "warehouse", r.target.Name)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	results := make([]StageResult, 0, len(seq))
	for _, s := range seq {
		if err := ctx.Err(); err != nil {
			r.logger.Info("pipeline stopping", "reason", err, "next_stage", s.Name())
			return results, fmt.Errorf("stage %s: %w", s.Name(), err)
		}

		res := r.runStage(ctx, s)
		results = append(results, res)
		r.metrics.StageDuration.WithLabelValues(res.Stage).Observe(res.Duration.Seconds())

		if res.Err != nil {
			r.metrics.StageFailures.WithLabelValues(res.Stage).Inc()
			r.logger.Error("stage failed", "stage", res.Stage, "duration", res.Duration, "error", res.Err)
			return results, fmt.Errorf("stage %s: %w", res.Stage, res.Err)
		}
		r.logger.Info("stage finished", "stage", res.Stage, "duration", res.Duration)
	}

	r.logger.Info("pipeline finished", "stages", len(results))
	return results, nil
}

func (r *Runner) runStage(ctx context.Context, s stages.Stage) (res StageResult) {
	res.Stage = s.Name()
	start := r.clock.Now()
	defer func() { res.Duration = r.clock.Since(start) }()

	r.logger.Info("stage started", "stage", res.Stage)
	wh, err := r.open(ctx, r.target)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if err := wh.Close(); err != nil && res.Err == nil {
			res.Err = fmt.Errorf("close warehouse: %w", err)
		}
	}()

	res.Err = s.Run(ctx, wh)
	return res
}
