//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/adapter/kafka"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
)

const testReportTopic = "test-complaint-trends"

// publishedRecord holds a deserialized message read from the report topic.
type publishedRecord struct {
	Record  domain.TrendRecord
	Key     string
	Headers map[string]string
}

// readRecord reads a single message from the report consumer and deserializes it.
func readRecord(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedRecord {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.TrendRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal report message")

	return publishedRecord{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestReportPublisher verifies that kafka.Writer publishes one keyed message
// per pivot row to a real broker.
func TestReportPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaReportTopic: testReportTopic,
	}

	table := domain.PivotYearly([]domain.YearlyCount{
		{Year: "2021", ComplaintType: "HEAT/HOT WATER", Count: 40},
		{Year: "2022", ComplaintType: "HEAT/HOT WATER", Count: 55},
		{Year: "2022", ComplaintType: "Elevator", Count: 6},
		{Year: "2021", ComplaintType: "Noise - Residential", Count: 12},
	})
	table.SortByYear("2022")
	report := domain.TrendReport{
		Table:       table,
		HQ:          domain.Point{Lat: 40.7503, Lon: -73.9897},
		RadiusMiles: 1.0,
		GeneratedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishReport(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     fmt.Sprintf("test-report-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]publishedRecord, len(table.Rows))
	for len(received) < len(table.Rows) {
		pr := readRecord(ctx, t, consumer)
		received[pr.Key] = pr
	}

	require.Len(t, received, 3)
	for key, pr := range received {
		assert.Equal(t, key, pr.Record.ComplaintType, "message key is the complaint type")
		assert.Equal(t, domain.ReportName, pr.Headers["report"])
		_, err := time.Parse(time.RFC3339, pr.Headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")
		assert.Equal(t, 1.0, pr.Record.RadiusMiles)
	}

	heat := received["HEAT/HOT WATER"].Record
	assert.Equal(t, map[string]int64{"2021": 40, "2022": 55}, heat.Counts)
	assert.Equal(t, int64(95), heat.Total)

	noise := received["Noise - Residential"].Record
	assert.Equal(t, int64(0), noise.Counts["2022"], "absent combinations are published as zero")
}
