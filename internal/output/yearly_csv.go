package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
)

// ErrMalformedCSV is returned when a yearly pivot file cannot be parsed.
var ErrMalformedCSV = errors.New("malformed yearly pivot csv")

// complaintTypeHeader names the first column of the pivot file.
const complaintTypeHeader = "complaint_type"

// WriteYearlyCSV writes the pivot with a "complaint_type" column followed by
// one integer column per year, in table order.
func WriteYearlyCSV(path string, table domain.YearlyTable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pivot csv: %w", err)
	}

	if err := encodeYearly(file, table); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close pivot csv: %w", err)
	}
	return nil
}

func encodeYearly(w io.Writer, table domain.YearlyTable) error {
	writer := csv.NewWriter(w)

	header := append([]string{complaintTypeHeader}, table.Years...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write pivot header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record[0] = row.ComplaintType
		for i, n := range row.Counts {
			record[i+1] = strconv.FormatInt(n, 10)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write pivot row %q: %w", row.ComplaintType, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush pivot csv: %w", err)
	}
	return nil
}

// ReadYearlyCSV parses a file written by WriteYearlyCSV.
func ReadYearlyCSV(path string) (domain.YearlyTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.YearlyTable{}, fmt.Errorf("open pivot csv: %w", err)
	}
	defer file.Close()

	return decodeYearly(file)
}

func decodeYearly(r io.Reader) (domain.YearlyTable, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return domain.YearlyTable{}, fmt.Errorf("%w: empty file", ErrMalformedCSV)
	}
	if err != nil {
		return domain.YearlyTable{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if header[0] != complaintTypeHeader {
		return domain.YearlyTable{}, fmt.Errorf("%w: first column is %q, want %q", ErrMalformedCSV, header[0], complaintTypeHeader)
	}

	table := domain.YearlyTable{Years: append([]string{}, header[1:]...)}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.YearlyTable{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}

		row := domain.YearlyRow{ComplaintType: rec[0], Counts: make([]int64, len(table.Years))}
		for i, s := range rec[1:] {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return domain.YearlyTable{}, fmt.Errorf("%w: %q/%s: %v", ErrMalformedCSV, rec[0], table.Years[i], err)
			}
			row.Counts[i] = n
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
