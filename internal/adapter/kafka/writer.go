// Package kafka announces published products on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces publication announcements.
// It implements pipeline.Announcer.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured announcement topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Announce writes one message for a published product, keyed by product id
// so announcements for the same product stay ordered.
func (w *Writer) Announce(ctx context.Context, p domain.Publication) error {
	msg, err := serializeToMessage(p)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("announce product %s: %w", p.ProductID, err)
	}
	w.logger.Debug("publication announced", "product_id", p.ProductID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Publication into a Kafka message.
func serializeToMessage(p domain.Publication) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize publication: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.ProductID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "batch", Value: []byte(p.Batch)},
			{Key: "published_at", Value: []byte(p.PublishedAt.Format(time.RFC3339))},
		},
	}, nil
}
