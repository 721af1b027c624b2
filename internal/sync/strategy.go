package sync

import (
	"context"
	"fmt"
	"time"

	"storesync/internal/models"
)

// Strategy orchestrates validate → transform → push → map → log for one
// entity type against a single shop.
type Strategy interface {
	EntityType() models.EntityType

	// NeedsSync is a pure read + hash compute: true when no state exists
	// yet or the stored checksum differs from a fresh one.
	NeedsSync(ctx context.Context, entityID string, shop *models.Shop) (bool, error)

	// ValidateBeforeSync runs the entity's pre-flight checks. An empty
	// slice means the entity may be pushed.
	ValidateBeforeSync(ctx context.Context, entityID string, shop *models.Shop) ([]ValidationError, error)

	// CalculateChecksum computes the fingerprint of what would be sent.
	CalculateChecksum(ctx context.Context, entityID string, shop *models.Shop) (string, error)

	// SyncToStore runs the full unit of work and returns its result. The
	// error is non-nil for validation failures and primary push failures;
	// secondary failures are reported inside the result only.
	SyncToStore(ctx context.Context, entityID string, client StoreClient, shop *models.Shop) (*SyncResult, error)
}

// Registry selects the strategy for an entity type. The set is closed at
// construction time.
type Registry struct {
	strategies map[models.EntityType]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[models.EntityType]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.EntityType()] = s
	}
	return r
}

func (r *Registry) For(entityType models.EntityType) (Strategy, error) {
	s, ok := r.strategies[entityType]
	if !ok {
		return nil, fmt.Errorf("no sync strategy registered for entity type %s", entityType)
	}
	return s, nil
}

// handleSyncError is the shared failure path of both strategies: it runs
// after the unit's transaction rolled back, writing the error state and
// the audit row as their own atomic operations.
func handleSyncError(ctx context.Context, states StateStore, logs LogStore, syncErr error,
	entityType models.EntityType, entityID string, shop *models.Shop,
	operation models.SyncOperation, started time.Time) {

	now := time.Now()
	if state, err := states.Get(ctx, entityType, entityID, shop.ID); err == nil && state != nil {
		state.Status = models.SyncStatusError
		state.LastError = syncErr.Error()
		state.RetryCount++
		state.LastSyncAt = &now
		// Best effort: the original error is what the caller sees.
		_ = states.Save(ctx, state)
	}

	logs.Append(ctx, &models.SyncLogEntry{
		ShopID:     shop.ID,
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Direction:  models.SyncDirectionPush,
		Status:     models.SyncLogStatusError,
		Message:    syncErr.Error(),
		DurationMs: time.Since(started).Milliseconds(),
	})
}

func appendSuccessLog(ctx context.Context, logs LogStore, entityType models.EntityType,
	entityID string, shop *models.Shop, operation models.SyncOperation,
	message string, started time.Time) {

	logs.Append(ctx, &models.SyncLogEntry{
		ShopID:     shop.ID,
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Direction:  models.SyncDirectionPush,
		Status:     models.SyncLogStatusSuccess,
		Message:    message,
		DurationMs: time.Since(started).Milliseconds(),
	})
}
