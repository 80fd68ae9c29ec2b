package domain

import "time"

// ReportName labels trend report messages.
const ReportName = "complaint_trends_by_year"

// TrendReport is the yearly pivot around an HQ, ready to publish.
type TrendReport struct {
	Table       YearlyTable
	HQ          Point
	RadiusMiles float64
	GeneratedAt time.Time
}

// TrendRecord is the per-complaint-type message body of a TrendReport.
type TrendRecord struct {
	Report        string           `json:"report"`
	ComplaintType string           `json:"complaint_type"`
	Counts        map[string]int64 `json:"counts"`
	Total         int64            `json:"total"`
	HQ            Point            `json:"hq"`
	RadiusMiles   float64          `json:"radius_miles"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// NewTrendReport stamps a pivot with the package clock.
func NewTrendReport(table YearlyTable, hq Point, radiusMiles float64) TrendReport {
	return TrendReport{Table: table, HQ: hq, RadiusMiles: radiusMiles, GeneratedAt: Now()}
}

// Records flattens the report into one record per complaint type, in row order.
func (r TrendReport) Records() []TrendRecord {
	out := make([]TrendRecord, 0, len(r.Table.Rows))
	for _, row := range r.Table.Rows {
		counts := make(map[string]int64, len(r.Table.Years))
		var total int64
		for i, y := range r.Table.Years {
			counts[y] = row.Counts[i]
			total += row.Counts[i]
		}
		out = append(out, TrendRecord{
			Report:        ReportName,
			ComplaintType: row.ComplaintType,
			Counts:        counts,
			Total:         total,
			HQ:            r.HQ,
			RadiusMiles:   r.RadiusMiles,
			GeneratedAt:   r.GeneratedAt,
		})
	}
	return out
}
