package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ErrExportMismatch is returned when an exported file disagrees with its source table.
var ErrExportMismatch = errors.New("export does not match source table")

// ParquetShape is the row and top-level column count of a Parquet file.
type ParquetShape struct {
	Rows    int64
	Columns int
}

// InspectParquet reads the footer of a Parquet file.
func InspectParquet(path string) (ParquetShape, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParquetShape{}, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ParquetShape{}, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return ParquetShape{}, fmt.Errorf("read parquet footer: %w", err)
	}
	return ParquetShape{
		Rows:    pf.NumRows(),
		Columns: len(pf.Schema().Fields()),
	}, nil
}

// VerifyParquet checks that the file at path holds exactly wantRows rows and
// wantColumns top-level columns.
func VerifyParquet(path string, wantRows int64, wantColumns int) (ParquetShape, error) {
	shape, err := InspectParquet(path)
	if err != nil {
		return shape, err
	}
	if shape.Rows != wantRows || shape.Columns != wantColumns {
		return shape, fmt.Errorf("%w: %s has %d rows x %d columns, table has %d x %d",
			ErrExportMismatch, path, shape.Rows, shape.Columns, wantRows, wantColumns)
	}
	return shape, nil
}
