package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrendReport_UsesClock(t *testing.T) {
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	r := NewTrendReport(PivotYearly(sampleCounts()), Point{Lat: 40.75, Lon: -73.99}, 1.0)

	assert.Equal(t, fixed, r.GeneratedAt)
	assert.Equal(t, 1.0, r.RadiusMiles)
}

func TestTrendReport_Records(t *testing.T) {
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	r := TrendReport{
		Table:       PivotYearly(sampleCounts()),
		HQ:          Point{Lat: 40.75, Lon: -73.99},
		RadiusMiles: 1.0,
		GeneratedAt: fixed,
	}

	recs := r.Records()
	require.Len(t, recs, 3)

	heat := recs[1]
	assert.Equal(t, ReportName, heat.Report)
	assert.Equal(t, "HEAT/HOT WATER", heat.ComplaintType)
	assert.Equal(t, map[string]int64{"2020": 90, "2021": 0, "2022": 300}, heat.Counts)
	assert.Equal(t, int64(390), heat.Total)
	assert.Equal(t, Point{Lat: 40.75, Lon: -73.99}, heat.HQ)
	assert.Equal(t, fixed, heat.GeneratedAt)
}

func TestTrendReport_RecordsEmpty(t *testing.T) {
	assert.Empty(t, TrendReport{}.Records())
}
