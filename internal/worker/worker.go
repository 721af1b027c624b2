package worker

import (
	"context"
	"encoding/json"
	"time"

	"storesync/internal/config"
	"storesync/internal/logger"
	"storesync/internal/models"
	"storesync/internal/sync"

	"github.com/segmentio/kafka-go"
)

// Event is an entity-change notification consumed from kafka. Whatever
// marked the entity dirty (editor, import, scheduler) publishes one of
// these; the worker turns it into sync units.
type Event struct {
	Type       string            `json:"type"`
	EntityType models.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	ShopID     string            `json:"shop_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

const (
	EventEntityChanged = "entity_changed"
	EventSyncRequested = "sync_requested"
	EventTreeRequested = "category_tree_requested"
)

type Worker struct {
	config       *config.Config
	logger       *logger.Logger
	reader       *kafka.Reader
	orchestrator *sync.Orchestrator
}

func New(cfg *config.Config, logger *logger.Logger, orchestrator *sync.Orchestrator) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        cfg.WorkerGroupID,
		Topic:          cfg.SyncJobsTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:       cfg,
		logger:       logger,
		reader:       reader,
		orchestrator: orchestrator,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.process(event); err != nil {
			w.logger.Error("Failed to process event: %v", err)
			continue
		}

		w.logger.Debug("Event processed successfully")
	}
}

// process runs one event to completion. Units are not cancelled
// mid-flight, so the context carries no deadline here.
func (w *Worker) process(event Event) error {
	ctx := context.Background()

	switch event.Type {
	case EventTreeRequested:
		_, err := w.orchestrator.SyncCategoryTree(ctx)
		return err
	case EventEntityChanged, EventSyncRequested:
		if event.ShopID != "" {
			_, err := w.orchestrator.SyncEntityToShop(ctx, event.EntityType, event.EntityID, event.ShopID)
			return err
		}
		results, err := w.orchestrator.SyncEntity(ctx, event.EntityType, event.EntityID)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				w.logger.Error("Sync failed for %s %s in shop %s: %v", event.EntityType, event.EntityID, r.ShopName, r.Err)
			}
		}
		return nil
	default:
		w.logger.Debug("Ignoring event type %s", event.Type)
		return nil
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
