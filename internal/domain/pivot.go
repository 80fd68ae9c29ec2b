package domain

import (
	"slices"
	"sort"
)

// YearlyCount is one row of the distance-filtered aggregate.
type YearlyCount struct {
	Year          string `db:"year"`
	ComplaintType string `db:"complaint_type"`
	Count         int64  `db:"complaints"`
}

// YearlyRow is one complaint type with a count per year column.
type YearlyRow struct {
	ComplaintType string  `json:"complaint_type"`
	Counts        []int64 `json:"counts"`
}

// YearlyTable is the pivot of YearlyCount: rows are complaint types and
// columns are years in ascending order. Absent combinations are zero.
type YearlyTable struct {
	Years []string    `json:"years"`
	Rows  []YearlyRow `json:"rows"`
}

// PivotYearly pivots aggregate rows into a YearlyTable. Rows are ordered by
// complaint type; counts for a repeated (year, type) pair are summed.
func PivotYearly(counts []YearlyCount) YearlyTable {
	yearSet := make(map[string]struct{})
	typeSet := make(map[string]struct{})
	for _, c := range counts {
		yearSet[c.Year] = struct{}{}
		typeSet[c.ComplaintType] = struct{}{}
	}

	years := make([]string, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	slices.Sort(years)
	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	slices.Sort(types)

	yearIdx := make(map[string]int, len(years))
	for i, y := range years {
		yearIdx[y] = i
	}
	rowIdx := make(map[string]int, len(types))
	rows := make([]YearlyRow, len(types))
	for i, t := range types {
		rowIdx[t] = i
		rows[i] = YearlyRow{ComplaintType: t, Counts: make([]int64, len(years))}
	}

	for _, c := range counts {
		rows[rowIdx[c.ComplaintType]].Counts[yearIdx[c.Year]] += c.Count
	}
	return YearlyTable{Years: years, Rows: rows}
}

// YearIndex returns the column index of year, or -1.
func (t YearlyTable) YearIndex(year string) int {
	return slices.Index(t.Years, year)
}

// Count returns the cell for (complaintType, year), zero when absent.
func (t YearlyTable) Count(complaintType, year string) int64 {
	col := t.YearIndex(year)
	if col < 0 {
		return 0
	}
	for _, r := range t.Rows {
		if r.ComplaintType == complaintType {
			return r.Counts[col]
		}
	}
	return 0
}

// SortByYear orders rows by the given year column, highest first. Ties keep
// their current order. It returns false and leaves the table untouched when
// the year column is absent.
func (t *YearlyTable) SortByYear(year string) bool {
	col := t.YearIndex(year)
	if col < 0 {
		return false
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Counts[col] > t.Rows[j].Counts[col]
	})
	return true
}

// Top returns a copy of the table restricted to the first n rows.
func (t YearlyTable) Top(n int) YearlyTable {
	n = max(0, min(n, len(t.Rows)))
	return YearlyTable{
		Years: slices.Clone(t.Years),
		Rows:  slices.Clone(t.Rows[:n]),
	}
}
