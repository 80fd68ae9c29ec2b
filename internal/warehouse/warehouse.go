package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/jmoiron/sqlx"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
)

const driverName = "duckdb"

// LocalDSN returns the DSN for a DuckDB database file. An empty path opens
// an in-memory database.
func LocalDSN(path string) string { return path }

// HostedDSN returns the MotherDuck DSN for database. An empty database
// attaches the account without selecting one, which exposes shared
// catalogs such as sample_data.
func HostedDSN(database, token string) string {
	return "md:" + database + "?motherduck_token=" + url.QueryEscape(token)
}

// Target names a warehouse and the DSN that reaches it.
type Target struct {
	Name string
	DSN  string
}

// PrimaryTarget is the warehouse the ingest and export stages write to:
// the configured MotherDuck database when USE_MOTHERDUCK is set, the local
// DuckDB file otherwise.
func PrimaryTarget(cfg *config.Config) Target {
	if cfg.UseMotherDuck {
		return Target{Name: "motherduck:" + cfg.MotherDuckDatabase, DSN: HostedDSN(cfg.MotherDuckDatabase, cfg.MotherDuckToken)}
	}
	return Target{Name: "duckdb:" + cfg.DuckDBPath, DSN: LocalDSN(cfg.DuckDBPath)}
}

// SampleTarget attaches the MotherDuck account that serves the shared
// sample_data catalog.
func SampleTarget(cfg *config.Config) Target {
	return Target{Name: "motherduck:sample_data", DSN: HostedDSN("", cfg.MotherDuckToken)}
}

// Opener opens a handle on a target. Callers own the returned Warehouse.
type Opener func(ctx context.Context, t Target) (*Warehouse, error)

// NewOpener returns an Opener that shares logger and metrics across handles.
func NewOpener(logger *slog.Logger, metrics *observability.Metrics) Opener {
	return func(ctx context.Context, t Target) (*Warehouse, error) {
		return Open(ctx, t.DSN, t.Name, logger, metrics)
	}
}

// Warehouse wraps a DuckDB handle with logging and query metrics.
// A Warehouse is acquired at stage entry and closed on every exit path.
type Warehouse struct {
	db      *sqlx.DB
	name    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open connects to DuckDB and verifies the connection. name identifies the
// target in logs; the DSN itself is never logged because it may carry a token.
func Open(ctx context.Context, dsn, name string, logger *slog.Logger, metrics *observability.Metrics) (*Warehouse, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse %s: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse %s: %w", name, err)
	}

	logger.Info("warehouse opened", "target", name)
	return &Warehouse{db: db, name: name, logger: logger, metrics: metrics}, nil
}

// Close releases the handle.
func (w *Warehouse) Close() error {
	w.logger.Info("warehouse closed", "target", w.name)
	return w.db.Close()
}

// DB returns the underlying sqlx handle.
func (w *Warehouse) DB() *sqlx.DB { return w.db }

// Name returns the log name of the target.
func (w *Warehouse) Name() string { return w.name }

func (w *Warehouse) observe(ctx context.Context, op string, start time.Time, err error) {
	d := time.Since(start)
	w.metrics.QueryDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		w.logger.ErrorContext(ctx, "warehouse statement failed", "op", op, "target", w.name, "error", err)
		return
	}
	w.logger.DebugContext(ctx, "warehouse statement", "op", op, "target", w.name, "duration_ms", d.Milliseconds())
}

func (w *Warehouse) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := w.db.ExecContext(ctx, query, args...)
	w.observe(ctx, op, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (w *Warehouse) selectInto(ctx context.Context, op string, dest any, query string, args ...any) error {
	start := time.Now()
	err := w.db.SelectContext(ctx, dest, query, args...)
	w.observe(ctx, op, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (w *Warehouse) getInto(ctx context.Context, op string, dest any, query string, args ...any) error {
	start := time.Now()
	err := w.db.GetContext(ctx, dest, query, args...)
	w.observe(ctx, op, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// QuoteIdent quotes a single SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes a dotted name such as catalog.schema.table part by part.
func QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// QuoteLiteral quotes a string literal. Used for file paths, which DuckDB's
// COPY and table functions accept only as constants.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
