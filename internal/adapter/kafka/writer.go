// Package kafka publishes gauge claim summaries after a batch run so
// downstream consumers can react without polling the store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-claims-service/internal/config"
	"github.com/couchcryptid/flood-claims-service/internal/domain"
)

// Publisher produces summary messages to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSummaries serializes and publishes the summaries from one batch run
// in a single WriteMessages call. runID ties all messages of a run together.
func (p *Publisher) PublishSummaries(ctx context.Context, runID string, summaries []domain.GaugeClaimsSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(runID, summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish summaries: %w", err)
	}
	p.logger.Info("published summaries", "count", len(summaries), "run_id", runID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a summary into a Kafka message keyed by gauge ID.
func serializeToMessage(runID string, summary domain.GaugeClaimsSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary %s: %w", summary.GaugeID, err)
	}
	return kafkago.Message{
		Key:   []byte(summary.GaugeID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "generated_at", Value: []byte(summary.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
