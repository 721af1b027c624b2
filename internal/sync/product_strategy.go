package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storesync/internal/config"
	"storesync/internal/logger"
	"storesync/internal/models"
)

// ProductStrategy syncs products. After a successful primary push it fans
// out the secondary syncs (category associations, price tiers, images,
// features, compatibilities, variants); each of those is isolated so a
// secondary failure never reverts the primary result.
type ProductStrategy struct {
	products    ProductFinder
	states      StateStore
	mappings    MappingStore
	logs        LogStore
	transformer *Transformer
	config      config.SyncConfig
	logger      *logger.Logger
}

func NewProductStrategy(products ProductFinder, states StateStore, mappings MappingStore,
	logs LogStore, cfg config.SyncConfig, logger *logger.Logger) *ProductStrategy {

	return &ProductStrategy{
		products:    products,
		states:      states,
		mappings:    mappings,
		logs:        logs,
		transformer: NewTransformer(),
		config:      cfg,
		logger:      logger,
	}
}

func (s *ProductStrategy) EntityType() models.EntityType {
	return models.EntityTypeProduct
}

// resolveRemoteCategories maps the product's local category assignments
// to the shop's remote ids. Unmapped categories fall back to the shop's
// root remote category instead of failing the unit; the checksum sees
// the fallback value, so creating the mapping later triggers a re-sync.
func (s *ProductStrategy) resolveRemoteCategories(ctx context.Context, product *models.Product, shop *models.Shop) ([]int, error) {
	seen := make(map[int]bool)
	var remote []int
	for _, localID := range product.CategoryAssignments(shop.ID) {
		remoteID, ok, err := s.mappings.RemoteID(ctx, shop.ID, models.EntityTypeCategory, localID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category mapping: %w", err)
		}
		if !ok {
			remoteID = shop.RootCategoryRemoteID
		}
		if !seen[remoteID] {
			seen[remoteID] = true
			remote = append(remote, remoteID)
		}
	}
	sort.Ints(remote)
	return remote, nil
}

func (s *ProductStrategy) fields(ctx context.Context, product *models.Product, shop *models.Shop) (map[string]string, error) {
	remoteCategories, err := s.resolveRemoteCategories(ctx, product, shop)
	if err != nil {
		return nil, err
	}
	return s.transformer.ProductFields(product, shop, remoteCategories), nil
}

func (s *ProductStrategy) CalculateChecksum(ctx context.Context, entityID string, shop *models.Shop) (string, error) {
	product, err := s.products.ProductByID(ctx, entityID)
	if err != nil {
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	fields, err := s.fields(ctx, product, shop)
	if err != nil {
		return "", err
	}
	return ChecksumOf(fields), nil
}

func (s *ProductStrategy) NeedsSync(ctx context.Context, entityID string, shop *models.Shop) (bool, error) {
	state, err := s.states.Get(ctx, models.EntityTypeProduct, entityID, shop.ID)
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

func (s *ProductStrategy) ValidateBeforeSync(ctx context.Context, entityID string, shop *models.Shop) ([]ValidationError, error) {
	product, err := s.products.ProductByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return s.validate(product), nil
}

func (s *ProductStrategy) validate(product *models.Product) []ValidationError {
	var errs []ValidationError
	if product.SKU == "" {
		errs = append(errs, ValidationError{Field: "sku", Message: "SKU is required"})
	}
	if product.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if !product.Active {
		errs = append(errs, ValidationError{Field: "active", Message: "product must be active"})
	}
	if product.PriceGross < 0 {
		errs = append(errs, ValidationError{Field: "price_gross", Message: "price must not be negative"})
	}
	return errs
}

func (s *ProductStrategy) SyncToStore(ctx context.Context, entityID string, client StoreClient, shop *models.Shop) (*SyncResult, error) {
	started := time.Now()

	product, err := s.products.ProductByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if verrs := s.validate(product); len(verrs) > 0 {
		return nil, ValidationErrors(verrs)
	}

	state, err := s.states.FirstOrCreate(ctx, models.EntityTypeProduct, entityID, shop.ID)
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

	remoteCategories, err := s.resolveRemoteCategories(ctx, product, shop)
	if err != nil {
		return nil, err
	}
	fields := s.transformer.ProductFields(product, shop, remoteCategories)
	checksum := ChecksumOf(fields)

	if state.Checksum == checksum && state.RemoteID != nil {
		// Nothing to push, but compatibilities are maintained outside the
		// checksummed field set and still get their pass.
		result := &SyncResult{
			Skipped:    true,
			Operation:  models.SyncOperationSkip,
			ExternalID: state.RemoteID,
			Checksum:   state.Checksum,
			Message:    "no changes detected",
		}
		if s.config.CompatibilityAutoSync {
			sub := s.runSecondary(ctx, "compatibilities", entityID, shop, func() error {
				return s.syncCompatibilities(ctx, client, product, *state.RemoteID)
			})
			result.SubResults = append(result.SubResults, sub)
		}
		appendSuccessLog(ctx, s.logs, models.EntityTypeProduct, entityID, shop,
			models.SyncOperationSkip, "no changes detected", started)
		return result, nil
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

		payload := s.transformer.ProductPayload(product, shop, remoteCategories)

		var remoteID int
		if operation == models.SyncOperationCreate {
			resp, err := client.CreateProduct(ctx, payload)
			if err != nil {
				return err
			}
			remoteID = resp.RemoteID()
		} else {
			resp, err := client.UpdateProduct(ctx, *state.RemoteID, payload)
			if err != nil {
				return err
			}
			remoteID = resp.RemoteID()
			if remoteID == 0 {
				// Some API versions echo an empty body on update.
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

		result = &SyncResult{
			Success:       true,
			Operation:     operation,
			ExternalID:    &remoteID,
			Checksum:      checksum,
			Message:       fmt.Sprintf("product %s %sd in shop %s", product.SKU, operationVerb(operation), shop.Name),
			ChangedFields: changed,
		}
		return nil
	})
	if err != nil {
		handleSyncError(ctx, s.states, s.logs, err, models.EntityTypeProduct, entityID, shop, operation, started)
		return nil, err
	}

	appendSuccessLog(ctx, s.logs, models.EntityTypeProduct, entityID, shop, operation, result.Message, started)

	result.SubResults = s.runSecondaries(ctx, client, product, shop, *result.ExternalID, remoteCategories)
	return result, nil
}

func operationVerb(op models.SyncOperation) string {
	if op == models.SyncOperationCreate {
		return "create"
	}
	return "update"
}
