package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testReport() domain.TrendReport {
	return domain.TrendReport{
		Table: domain.YearlyTable{
			Years: []string{"2021", "2022"},
			Rows: []domain.YearlyRow{
				{ComplaintType: "HEAT/HOT WATER", Counts: []int64{10, 30}},
				{ComplaintType: "Elevator", Counts: []int64{2, 0}},
			},
		},
		HQ:          domain.Point{Lat: 40.75, Lon: -73.99},
		RadiusMiles: 1.0,
		GeneratedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func newTestWriter(fw *fakeWriter) *Writer {
	return &Writer{
		writer:  fw,
		metrics: observability.NewMetricsForTesting(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := domain.TrendRecord{
		Report:        domain.ReportName,
		ComplaintType: "Elevator",
		Counts:        map[string]int64{"2022": 4},
		Total:         4,
		HQ:            domain.Point{Lat: 40.75, Lon: -73.99},
		RadiusMiles:   1,
		GeneratedAt:   now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("Elevator"), msg.Key)
	assert.Contains(t, string(msg.Value), `"complaint_type":"Elevator"`)
	assert.Contains(t, string(msg.Value), `"counts":{"2022":4}`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "report", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.ReportName), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestWriter_PublishReport(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw)

	require.NoError(t, w.PublishReport(context.Background(), testReport()))

	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("HEAT/HOT WATER"), fw.msgs[0].Key)
	assert.Equal(t, []byte("Elevator"), fw.msgs[1].Key)

	var rec domain.TrendRecord
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &rec))
	assert.Equal(t, int64(40), rec.Total)
	assert.Equal(t, int64(30), rec.Counts["2022"])

	assert.Equal(t, 2.0, testutil.ToFloat64(w.metrics.ReportsPublished))

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_PublishReport_Empty(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw)

	require.NoError(t, w.PublishReport(context.Background(), domain.TrendReport{}))
	assert.Empty(t, fw.msgs)
}

func TestWriter_PublishReport_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker unavailable")}
	w := newTestWriter(fw)

	err := w.PublishReport(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish trend report")
	assert.Equal(t, 0.0, testutil.ToFloat64(w.metrics.ReportsPublished))
}
