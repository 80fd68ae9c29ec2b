package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes trend reports to a Kafka topic.
// It implements stages.ReportPublisher.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// PublishReport serializes every row of the report and publishes them in a
// single WriteMessages call. Rows are keyed by complaint type.
func (w *Writer) PublishReport(ctx context.Context, report domain.TrendReport) error {
	records := report.Records()
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish trend report: %w", err)
	}
	w.metrics.ReportsPublished.Add(float64(len(msgs)))
	w.logger.Info("trend report published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TrendRecord into a Kafka message.
func serializeToMessage(rec domain.TrendRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trend record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ComplaintType),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report", Value: []byte(rec.Report)},
			{Key: "generated_at", Value: []byte(rec.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
