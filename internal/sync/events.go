package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"storesync/internal/logger"
)

const (
	SyncCompletedEvent = "sync_completed"
	SyncSkippedEvent   = "sync_skipped"
	SyncFailedEvent    = "sync_failed"
)

// Event is the outcome record published after every (entity, shop) unit.
type Event struct {
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ShopID     string    `json:"shop_id"`
	Operation  string    `json:"operation,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventPublisher decouples the orchestrator from kafka; a nil publisher
// disables event emission.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers, topic string, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
