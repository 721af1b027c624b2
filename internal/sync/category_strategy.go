package sync

import (
	"context"
	"fmt"
	"time"

	"storesync/internal/logger"
	"storesync/internal/models"
)

// maxCategoryDepth bounds the parent recursion; deeper trees indicate a
// cycle in the local data.
const maxCategoryDepth = 10

// CategoryStrategy syncs categories. A category is never pushed before
// its parent exists remotely, because the payload carries the parent's
// remote id; the strategy recursively ensures the parent first.
type CategoryStrategy struct {
	categories  CategoryFinder
	states      StateStore
	mappings    MappingStore
	logs        LogStore
	transformer *Transformer
	logger      *logger.Logger
}

func NewCategoryStrategy(categories CategoryFinder, states StateStore, mappings MappingStore,
	logs LogStore, logger *logger.Logger) *CategoryStrategy {

	return &CategoryStrategy{
		categories:  categories,
		states:      states,
		mappings:    mappings,
		logs:        logs,
		transformer: NewTransformer(),
		logger:      logger,
	}
}

func (s *CategoryStrategy) EntityType() models.EntityType {
	return models.EntityTypeCategory
}

// remoteParentID resolves the parent's remote id without syncing it. The
// shop's root remote category is the fallback for unmapped parents.
func (s *CategoryStrategy) remoteParentID(ctx context.Context, category *models.Category, shop *models.Shop) (int, error) {
	if category.IsRoot() {
		return shop.RootCategoryRemoteID, nil
	}
	remoteID, ok, err := s.mappings.RemoteID(ctx, shop.ID, models.EntityTypeCategory, *category.ParentID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve parent mapping: %w", err)
	}
	if !ok {
		return shop.RootCategoryRemoteID, nil
	}
	return remoteID, nil
}

func (s *CategoryStrategy) CalculateChecksum(ctx context.Context, entityID string, shop *models.Shop) (string, error) {
	category, err := s.categories.CategoryByID(ctx, entityID)
	if err != nil {
		return "", fmt.Errorf("failed to load category: %w", err)
	}
	parentID, err := s.remoteParentID(ctx, category, shop)
	if err != nil {
		return "", err
	}
	return ChecksumOf(s.transformer.CategoryFields(category, parentID)), nil
}

func (s *CategoryStrategy) NeedsSync(ctx context.Context, entityID string, shop *models.Shop) (bool, error) {
	state, err := s.states.Get(ctx, models.EntityTypeCategory, entityID, shop.ID)
	if err != nil {
		return false, err
	}
	if state == nil || state.Checksum == "" {
		return true, nil
	}
	checksum, err := s.CalculateChecksum(ctx, entityID, shop)
	if err != nil {
		return false, err
	}
	return checksum != state.Checksum, nil
}

func (s *CategoryStrategy) ValidateBeforeSync(ctx context.Context, entityID string, shop *models.Shop) ([]ValidationError, error) {
	category, err := s.categories.CategoryByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return s.validate(category), nil
}

func (s *CategoryStrategy) validate(category *models.Category) []ValidationError {
	var errs []ValidationError
	if category.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if !category.Active {
		errs = append(errs, ValidationError{Field: "active", Message: "category must be active"})
	}
	return errs
}

func (s *CategoryStrategy) SyncToStore(ctx context.Context, entityID string, client StoreClient, shop *models.Shop) (*SyncResult, error) {
	return s.syncToStore(ctx, entityID, client, shop, 0)
}

func (s *CategoryStrategy) syncToStore(ctx context.Context, entityID string, client StoreClient, shop *models.Shop, depth int) (*SyncResult, error) {
	if depth > maxCategoryDepth {
		return nil, fmt.Errorf("category tree deeper than %d levels, aborting (cycle?)", maxCategoryDepth)
	}

	started := time.Now()

	category, err := s.categories.CategoryByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if verrs := s.validate(category); len(verrs) > 0 {
		return nil, ValidationErrors(verrs)
	}

	state, err := s.states.FirstOrCreate(ctx, models.EntityTypeCategory, entityID, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}
	if state.Status == models.SyncStatusDisabled {
		return &SyncResult{
			Skipped:    true,
			Operation:  models.SyncOperationSkip,
			ExternalID: state.RemoteID,
			Message:    "sync disabled for this shop",
		}, nil
	}

	// Parent before child, synchronously within this unit.
	if err := s.ensureParentSynced(ctx, category, client, shop, depth); err != nil {
		handleSyncError(ctx, s.states, s.logs, err, models.EntityTypeCategory, entityID, shop, models.SyncOperationCreate, started)
		return nil, err
	}

	parentRemoteID, err := s.remoteParentID(ctx, category, shop)
	if err != nil {
		return nil, err
	}
	fields := s.transformer.CategoryFields(category, parentRemoteID)
	checksum := ChecksumOf(fields)

	if state.Checksum == checksum && state.RemoteID != nil {
		appendSuccessLog(ctx, s.logs, models.EntityTypeCategory, entityID, shop,
			models.SyncOperationSkip, "no changes detected", started)
		return &SyncResult{
			Skipped:    true,
			Operation:  models.SyncOperationSkip,
			ExternalID: state.RemoteID,
			Checksum:   state.Checksum,
			Message:    "no changes detected",
		}, nil
	}

	operation := models.SyncOperationCreate
	if state.RemoteID != nil {
		operation = models.SyncOperationUpdate
	}

	var result *SyncResult
	err = s.states.Transaction(ctx, func(states StateStore) error {
		now := time.Now()
		state.Status = models.SyncStatusSyncing
		state.LastSyncAt = &now
		if err := states.Save(ctx, state); err != nil {
			return fmt.Errorf("failed to mark state syncing: %w", err)
		}

		payload := s.transformer.CategoryPayload(category, shop, parentRemoteID)

		var remoteID int
		if operation == models.SyncOperationCreate {
			resp, err := client.CreateCategory(ctx, payload)
			if err != nil {
				return err
			}
			remoteID = resp.RemoteID()
		} else {
			resp, err := client.UpdateCategory(ctx, *state.RemoteID, payload)
			if err != nil {
				return err
			}
			remoteID = resp.RemoteID()
			if remoteID == 0 {
				remoteID = *state.RemoteID
			}
		}
		if remoteID == 0 {
			return ErrNoRemoteID
		}

		changed := diffSnapshots(state.Snapshot, fields)

		success := time.Now()
		state.Status = models.SyncStatusSynced
		state.RemoteID = &remoteID
		state.Checksum = checksum
		state.Snapshot = fields
		state.RetryCount = 0
		state.LastError = ""
		state.LastSuccessAt = &success
		if err := states.Save(ctx, state); err != nil {
			return fmt.Errorf("failed to persist synced state: %w", err)
		}

		// The mapping makes the category resolvable for product payloads
		// and child categories; written on first successful create.
		if operation == models.SyncOperationCreate {
			if err := s.mappings.Save(ctx, shop.ID, models.EntityTypeCategory, category.ID, remoteID); err != nil {
				return fmt.Errorf("failed to persist category mapping: %w", err)
			}
		}

		result = &SyncResult{
			Success:       true,
			Operation:     operation,
			ExternalID:    &remoteID,
			Checksum:      checksum,
			Message:       fmt.Sprintf("category %s %sd in shop %s", category.Name, operationVerb(operation), shop.Name),
			ChangedFields: changed,
		}
		return nil
	})
	if err != nil {
		handleSyncError(ctx, s.states, s.logs, err, models.EntityTypeCategory, entityID, shop, operation, started)
		return nil, err
	}

	appendSuccessLog(ctx, s.logs, models.EntityTypeCategory, entityID, shop, operation, result.Message, started)
	return result, nil
}

// ensureParentSynced pushes the parent chain first when it has no mapping
// yet. Runs in the same goroutine to keep ordering deterministic.
func (s *CategoryStrategy) ensureParentSynced(ctx context.Context, category *models.Category, client StoreClient, shop *models.Shop, depth int) error {
	if category.IsRoot() {
		return nil
	}
	_, ok, err := s.mappings.RemoteID(ctx, shop.ID, models.EntityTypeCategory, *category.ParentID)
	if err != nil {
		return fmt.Errorf("failed to resolve parent mapping: %w", err)
	}
	if ok {
		return nil
	}
	if _, err := s.syncToStore(ctx, *category.ParentID, client, shop, depth+1); err != nil {
		return fmt.Errorf("failed to sync parent category: %w", err)
	}
	return nil
}
