package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"docqa/internal/config"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// EventPublisher sends ingestion lifecycle events to a Kafka topic. Events are
// informational; ingestion never fails because a publish failed.
type EventPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher creates a publisher for the configured topic.
func NewEventPublisher(cfg *config.EventsConfig) *EventPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &EventPublisher{writer: writer}
}

// Publish serializes the event as JSON, keyed by collection so that events for
// one collection stay ordered within a partition.
func (p *EventPublisher) Publish(ctx context.Context, event *schema.IngestionEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ingestion event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Collection),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*EventPublisher)(nil)
