package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RawTable holds the unfiltered Socrata snapshot.
const RawTable = "raw_nyc_311"

// Columns used by the cleaning and analysis queries. They are the
// normalized Socrata names.
const (
	ColCreated       = "created_date"
	ColClosed        = "closed_date"
	ColComplaintType = "complaint_type"
	ColBorough       = "borough"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
	ColClosedInDays  = "closed_in_days"
)

// Column is one entry of a table's schema.
type Column struct {
	Name string `db:"column_name"`
	Type string `db:"data_type"`
}

// DurationSample is a row of the closed_in_days preview.
type DurationSample struct {
	Created      string         `db:"created_date"`
	Closed       sql.NullString `db:"closed_date"`
	ClosedInDays sql.NullInt64  `db:"closed_in_days"`
}

// LoadCSV replaces table with the contents of a headered CSV file, letting
// DuckDB infer column types.
func (w *Warehouse) LoadCSV(ctx context.Context, table, csvPath string) error {
	q := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header = true)",
		QuoteIdent(table), QuoteLiteral(csvPath),
	)
	_, err := w.exec(ctx, "load_csv", q)
	return err
}

// FilterClean rebuilds dst from src, keeping rows whose complaint type
// contains substr (case-insensitive) and whose creation date falls in year.
// The complaint type is stored lowercased.
func (w *Warehouse) FilterClean(ctx context.Context, src, dst, substr string, year int) error {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	project := fmt.Sprintf("SELECT * REPLACE (LOWER(%[1]s) AS %[1]s) FROM %[2]s",
		QuoteIdent(ColComplaintType), QuoteIdent(src))

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s LIMIT 0", QuoteIdent(dst), project)
	if _, err := w.exec(ctx, "filter_clean_schema", create); err != nil {
		return err
	}

	insert := fmt.Sprintf(`INSERT INTO %s %s
WHERE %s ILIKE '%%' || CAST(? AS VARCHAR) || '%%'
  AND CAST(%s AS TIMESTAMP) >= CAST(? AS TIMESTAMP)
  AND CAST(%s AS TIMESTAMP) < CAST(? AS TIMESTAMP)`,
		QuoteIdent(dst), project,
		QuoteIdent(ColComplaintType), QuoteIdent(ColCreated), QuoteIdent(ColCreated))
	_, err := w.exec(ctx, "filter_clean", insert, substr, from, to)
	return err
}

// Columns lists a table's columns in ordinal order.
func (w *Warehouse) Columns(ctx context.Context, table string) ([]Column, error) {
	var cols []Column
	err := w.selectInto(ctx, "columns", &cols, `SELECT column_name, data_type
FROM information_schema.columns
WHERE table_name = ?
  AND table_schema = current_schema()
  AND table_catalog = current_database()
ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// RenameColumn renames a single column.
func (w *Warehouse) RenameColumn(ctx context.Context, table, from, to string) error {
	q := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		QuoteIdent(table), QuoteIdent(from), QuoteIdent(to))
	_, err := w.exec(ctx, "rename_column", q)
	return err
}

// AddClosedInDays adds (or refreshes) closed_in_days as the number of day
// boundaries between creation and closure. Rows without a parseable closure
// date get NULL.
func (w *Warehouse) AddClosedInDays(ctx context.Context, table string) error {
	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s INTEGER",
		QuoteIdent(table), QuoteIdent(ColClosedInDays))
	if _, err := w.exec(ctx, "add_closed_in_days", alter); err != nil {
		return err
	}

	update := fmt.Sprintf(
		"UPDATE %s SET %s = DATEDIFF('day', CAST(%s AS TIMESTAMP), TRY_CAST(%s AS TIMESTAMP))",
		QuoteIdent(table), QuoteIdent(ColClosedInDays), QuoteIdent(ColCreated), QuoteIdent(ColClosed))
	_, err := w.exec(ctx, "update_closed_in_days", update)
	return err
}

// DurationSamples returns up to limit (created, closed, closed_in_days) rows,
// oldest first.
func (w *Warehouse) DurationSamples(ctx context.Context, table string, limit int) ([]DurationSample, error) {
	q := fmt.Sprintf(`SELECT CAST(%[2]s AS VARCHAR) AS created_date,
       CAST(%[3]s AS VARCHAR) AS closed_date,
       %[4]s AS closed_in_days
FROM %[1]s
ORDER BY %[2]s
LIMIT %[5]d`,
		QuoteIdent(table), QuoteIdent(ColCreated), QuoteIdent(ColClosed), QuoteIdent(ColClosedInDays), limit)

	var out []DurationSample
	if err := w.selectInto(ctx, "duration_samples", &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// RowCount returns the number of rows in table.
func (w *Warehouse) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := w.getInto(ctx, "row_count", &n, "SELECT COUNT(*) FROM "+QuoteIdent(table)); err != nil {
		return 0, err
	}
	return n, nil
}
