package warehouse

import (
	"context"
	"fmt"
)

// ComplaintTypeCount is one row of the complaint-type read-back.
type ComplaintTypeCount struct {
	ComplaintType string `db:"complaint_type"`
	Issues        int64  `db:"issues"`
}

// CopyToCSV writes table to path as a comma-delimited CSV with a header row.
func (w *Warehouse) CopyToCSV(ctx context.Context, table, path string) error {
	q := fmt.Sprintf("COPY %s TO %s (HEADER, DELIMITER ',')", QuoteIdent(table), QuoteLiteral(path))
	_, err := w.exec(ctx, "copy_csv", q)
	return err
}

// CopyToParquet writes table to path in Parquet format.
func (w *Warehouse) CopyToParquet(ctx context.Context, table, path string) error {
	q := fmt.Sprintf("COPY %s TO %s (FORMAT PARQUET)", QuoteIdent(table), QuoteLiteral(path))
	_, err := w.exec(ctx, "copy_parquet", q)
	return err
}

// TopComplaintTypes counts rows per complaint type in a Parquet file and
// returns the limit largest groups.
func (w *Warehouse) TopComplaintTypes(ctx context.Context, parquetPath string, limit int) ([]ComplaintTypeCount, error) {
	q := fmt.Sprintf(`SELECT %[1]s AS complaint_type, COUNT(*) AS issues
FROM read_parquet(%[2]s)
GROUP BY %[1]s
ORDER BY issues DESC, complaint_type
LIMIT %[3]d`, QuoteIdent(ColComplaintType), QuoteLiteral(parquetPath), limit)

	var out []ComplaintTypeCount
	if err := w.selectInto(ctx, "top_complaint_types", &out, q); err != nil {
		return nil, err
	}
	return out, nil
}
