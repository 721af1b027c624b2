package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"storesync/internal/logger"
	"storesync/internal/models"
)

// ClientFactory builds a store client for one shop; the orchestrator
// never talks HTTP itself.
type ClientFactory func(shop *models.Shop) StoreClient

// ShopResult is one shop's outcome within a fan-out. Exactly one of
// Result and Err is meaningful.
type ShopResult struct {
	ShopID   string      `json:"shop_id"`
	ShopName string      `json:"shop_name"`
	Result   *SyncResult `json:"result,omitempty"`
	Err      error       `json:"-"`
}

// Orchestrator sequences strategy invocations across shops. Each
// (entity, shop) pair is an independent unit of work: units run
// concurrently and one shop's failure never aborts the others.
type Orchestrator struct {
	shops      ShopFinder
	categories CategoryLister
	states     StateStore
	registry   *Registry
	clients    ClientFactory
	events     EventPublisher
	logger     *logger.Logger
}

func NewOrchestrator(shops ShopFinder, categories CategoryLister, states StateStore,
	registry *Registry, clients ClientFactory, events EventPublisher, logger *logger.Logger) *Orchestrator {

	return &Orchestrator{
		shops:      shops,
		categories: categories,
		states:     states,
		registry:   registry,
		clients:    clients,
		events:     events,
		logger:     logger,
	}
}

// SyncEntity pushes one entity to every applicable shop. Disabled pairs
// are dropped from consideration before dispatch.
func (o *Orchestrator) SyncEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]ShopResult, error) {
	strategy, err := o.registry.For(entityType)
	if err != nil {
		return nil, err
	}

	shops, err := o.shops.ActiveShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select shops: %w", err)
	}

	var applicable []models.Shop
	for _, shop := range shops {
		state, err := o.states.Get(ctx, entityType, entityID, shop.ID)
		if err != nil {
			return nil, err
		}
		if state != nil && state.Status == models.SyncStatusDisabled {
			continue
		}
		applicable = append(applicable, shop)
	}

	results := make([]ShopResult, len(applicable))
	var wg gosync.WaitGroup
	for i := range applicable {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shop := applicable[i]
			result, err := strategy.SyncToStore(ctx, entityID, o.clients(&shop), &shop)
			results[i] = ShopResult{ShopID: shop.ID, ShopName: shop.Name, Result: result, Err: err}
			o.publishOutcome(ctx, entityType, entityID, &shop, result, err)
		}(i)
	}
	wg.Wait()

	return results, nil
}

// SyncEntityToShop runs a single (entity, shop) unit.
func (o *Orchestrator) SyncEntityToShop(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*SyncResult, error) {
	strategy, err := o.registry.For(entityType)
	if err != nil {
		return nil, err
	}
	shop, err := o.shops.ShopByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	result, err := strategy.SyncToStore(ctx, entityID, o.clients(shop), shop)
	o.publishOutcome(ctx, entityType, entityID, shop, result, err)
	return result, err
}

// SyncCategoryTree pushes the whole category tree, strictly level by
// level from the roots down, so no category is ever sent with an
// unresolved parent reference.
func (o *Orchestrator) SyncCategoryTree(ctx context.Context) (map[string][]ShopResult, error) {
	categories, err := o.categories.Categories(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	depthOf := func(c *models.Category) int {
		depth := 0
		for cur := c; !cur.IsRoot() && depth <= maxCategoryDepth; depth++ {
			parent, ok := byID[*cur.ParentID]
			if !ok {
				break
			}
			cur = parent
		}
		return depth
	}

	levels := make(map[int][]*models.Category)
	maxLevel := 0
	for i := range categories {
		d := depthOf(&categories[i])
		levels[d] = append(levels[d], &categories[i])
		if d > maxLevel {
			maxLevel = d
		}
	}

	results := make(map[string][]ShopResult, len(categories))
	for level := 0; level <= maxLevel; level++ {
		batch := levels[level]
		sort.Slice(batch, func(i, j int) bool { return batch[i].Position < batch[j].Position })
		for _, category := range batch {
			shopResults, err := o.SyncEntity(ctx, models.EntityTypeCategory, category.ID)
			if err != nil {
				return results, err
			}
			results[category.ID] = shopResults
		}
	}
	return results, nil
}

// DetectDrift compares what the remote store currently holds against the
// last synced snapshot. Drift marks the pair CONFLICT; an operator
// resolves it by re-syncing or disabling.
func (o *Orchestrator) DetectDrift(ctx context.Context, entityID, shopID string) (bool, error) {
	shop, err := o.shops.ShopByID(ctx, shopID)
	if err != nil {
		return false, err
	}
	state, err := o.states.Get(ctx, models.EntityTypeProduct, entityID, shop.ID)
	if err != nil {
		return false, err
	}
	if state == nil || state.RemoteID == nil || state.Status != models.SyncStatusSynced {
		return false, nil
	}

	remote, err := o.clients(shop).GetProduct(ctx, *state.RemoteID)
	if err != nil {
		return false, fmt.Errorf("failed to read remote product: %w", err)
	}
	if remote.Product.Reference == state.Snapshot["sku"] {
		return false, nil
	}

	state.Status = models.SyncStatusConflict
	state.LastError = fmt.Sprintf("remote reference %q no longer matches synced %q",
		remote.Product.Reference, state.Snapshot["sku"])
	if err := o.states.Save(ctx, state); err != nil {
		return true, err
	}
	o.logger.Warn("drift detected for product %s in shop %s", entityID, shop.Name)
	return true, nil
}

// Disable removes a pair from automatic sync consideration. Terminal
// until an operator re-enables by triggering a manual sync reset.
func (o *Orchestrator) Disable(ctx context.Context, entityType models.EntityType, entityID, shopID string) error {
	state, err := o.states.FirstOrCreate(ctx, entityType, entityID, shopID)
	if err != nil {
		return err
	}
	state.Status = models.SyncStatusDisabled
	return o.states.Save(ctx, state)
}

func (o *Orchestrator) publishOutcome(ctx context.Context, entityType models.EntityType,
	entityID string, shop *models.Shop, result *SyncResult, err error) {

	if o.events == nil {
		return
	}

	event := Event{
		EntityType: string(entityType),
		EntityID:   entityID,
		ShopID:     shop.ID,
		Timestamp:  time.Now(),
	}
	switch {
	case err != nil:
		event.Type = SyncFailedEvent
		event.Message = err.Error()
	case result != nil && result.Skipped:
		event.Type = SyncSkippedEvent
		event.Message = result.Message
	default:
		event.Type = SyncCompletedEvent
		if result != nil {
			event.Operation = string(result.Operation)
			event.Message = result.Message
		}
	}

	if perr := o.events.Publish(ctx, event); perr != nil {
		o.logger.Warn("failed to publish sync event: %v", perr)
	}
}
