// Package kafka publishes accepted stations for downstream consumers that
// want the canonical data without polling the GeoJSON file.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/evatlas/chargefeed/internal/domain"
)

// Writer produces station messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishFeed serializes every station of a finalized feed and publishes
// them in a single WriteMessages call. Station IDs are message keys, so a
// compacted topic converges to the latest canonical state per site.
func (w *Writer) PublishFeed(ctx context.Context, feed domain.CanonicalFeed) error {
	if len(feed.Stations) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(feed.Stations))
	for i := range feed.Stations {
		msg, err := serializeToMessage(feed.Stations[i], feed.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish feed: %w", err)
	}
	w.logger.Info("feed published to kafka", "stations", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Station into a Kafka message.
func serializeToMessage(station domain.Station, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(station)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(station.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(station.Category)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
