//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/evatlas/chargefeed/internal/adapter/kafka"
	"github.com/evatlas/chargefeed/internal/domain"
)

const testFeedTopic = "test-chargefeed"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka spins up a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("chargefeed-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedStation holds a deserialized message read from the feed topic.
type publishedStation struct {
	Station domain.Station
	Key     string
	Headers map[string]string
}

func readStation(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedStation {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from feed topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var station domain.Station
	require.NoError(t, json.Unmarshal(msg.Value, &station), "unmarshal feed message")

	return publishedStation{
		Station: station,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// TestPublishFeed verifies that a finalized feed round-trips through a real
// Kafka broker: one message per station, keyed by station ID, with category
// and generated_at headers intact.
func TestPublishFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedTopic)

	generatedAt := time.Date(2026, time.August, 24, 6, 0, 0, 0, time.UTC)
	feed := domain.CanonicalFeed{
		Stations: []domain.Station{
			{
				ID:        domain.StationID(domain.CategoryCCS, 52.52, 13.405, "ocm"),
				Category:  domain.CategoryCCS,
				PowerKW:   150,
				Latitude:  52.52,
				Longitude: 13.405,
				Source:    "ocm",
			},
			{
				ID:        domain.StationID(domain.CategoryMCS, 51.37, 6.17, "mcs-seed"),
				Category:  domain.CategoryMCS,
				PowerKW:   1200,
				Latitude:  51.37,
				Longitude: 6.17,
				Source:    "mcs-seed",
			},
		},
		Counts:      domain.FeedCounts{Accepted: 2},
		GeneratedAt: generatedAt,
	}

	writer := kafkaadapter.NewWriter([]string{broker}, testFeedTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishFeed(ctx, feed))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testFeedTopic,
		GroupID:     fmt.Sprintf("test-feed-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]publishedStation, 0, len(feed.Stations))
	for len(received) < len(feed.Stations) {
		received = append(received, readStation(ctx, t, consumer))
	}

	byKey := make(map[string]publishedStation, len(received))
	for _, ps := range received {
		byKey[ps.Key] = ps
		assert.Equal(t, ps.Station.ID, ps.Key, "message key is the station ID")
		assert.Equal(t, generatedAt.Format(time.RFC3339), ps.Headers["generated_at"])
	}
	require.Len(t, byKey, 2)

	ccs := byKey[feed.Stations[0].ID]
	assert.Equal(t, "CCS", ccs.Headers["category"])
	assert.Equal(t, domain.CategoryCCS, ccs.Station.Category)
	assert.Equal(t, 150.0, ccs.Station.PowerKW)
	assert.Equal(t, "ocm", ccs.Station.Source)

	mcs := byKey[feed.Stations[1].ID]
	assert.Equal(t, "MCS", mcs.Headers["category"])
	assert.Equal(t, 1200.0, mcs.Station.PowerKW)
}

// TestPublishFeed_Empty verifies that an empty feed publishes nothing and
// does not error.
func TestPublishFeed_Empty(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedTopic)

	writer := kafkaadapter.NewWriter([]string{broker}, testFeedTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishFeed(ctx, domain.CanonicalFeed{GeneratedAt: time.Now()}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testFeedTopic,
		GroupID:     fmt.Sprintf("test-empty-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readCancel()
	_, err := consumer.ReadMessage(readCtx)
	assert.Error(t, err, "expected no messages for an empty feed")
}
