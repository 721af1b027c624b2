package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storesync/internal/config"
	"storesync/internal/logger"
	"storesync/internal/models"
)

type fakeEventPublisher struct {
	mu     gosync.Mutex
	events []Event
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventPublisher) byType(eventType string) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	states       *fakeStateStore
	mappings     *fakeMappingStore
	logs         *fakeLogStore
	events       *fakeEventPublisher
	clients      map[string]*mockStoreClient
}

func newOrchestratorFixture(shops []models.Shop, products map[string]*models.Product,
	categories map[string]*models.Category) *orchestratorFixture {

	states := newFakeStateStore()
	mappings := newFakeMappingStore()
	logs := &fakeLogStore{}
	events := &fakeEventPublisher{}
	log := logger.New("error")

	clients := make(map[string]*mockStoreClient, len(shops))
	for _, shop := range shops {
		clients[shop.ID] = &mockStoreClient{}
	}

	categoryStore := &fakeCategoryStore{categories: categories}
	registry := NewRegistry(
		NewProductStrategy(&fakeProductFinder{products: products}, states, mappings, logs, config.SyncConfig{}, log),
		NewCategoryStrategy(categoryStore, states, mappings, logs, log),
	)

	orchestrator := NewOrchestrator(
		&fakeShopFinder{shops: shops},
		categoryStore,
		states,
		registry,
		func(shop *models.Shop) StoreClient { return clients[shop.ID] },
		events,
		log,
	)
	return &orchestratorFixture{
		orchestrator: orchestrator,
		states:       states,
		mappings:     mappings,
		logs:         logs,
		events:       events,
		clients:      clients,
	}
}

func TestSyncEntityIsolatesShopFailures(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a"), *testShop("shop-b")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	f.clients["shop-a"].On("CreateProduct", mock.Anything, mock.Anything).Return(productResponse(55), nil)
	f.clients["shop-a"].On("UpdateProductCategories", mock.Anything, 55, mock.Anything).Return(nil)
	f.clients["shop-b"].On("CreateProduct", mock.Anything, mock.Anything).Return(nil, errors.New("503 service unavailable"))

	results, err := f.orchestrator.SyncEntity(context.Background(), models.EntityTypeProduct, "p1")
	require.NoError(t, err)
	require.Len(t, results, 2)

	byShop := make(map[string]ShopResult, len(results))
	for _, r := range results {
		byShop[r.ShopID] = r
	}

	require.NoError(t, byShop["shop-a"].Err)
	assert.True(t, byShop["shop-a"].Result.Success)
	require.Error(t, byShop["shop-b"].Err)
	assert.Nil(t, byShop["shop-b"].Result)

	stateA, _ := f.states.Get(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	assert.Equal(t, models.SyncStatusSynced, stateA.Status)
	stateB, _ := f.states.Get(context.Background(), models.EntityTypeProduct, "p1", "shop-b")
	assert.Equal(t, models.SyncStatusError, stateB.Status)
	assert.Equal(t, 1, stateB.RetryCount)

	assert.Len(t, f.events.byType(SyncCompletedEvent), 1)
	assert.Len(t, f.events.byType(SyncFailedEvent), 1)
}

func TestSyncEntityFiltersDisabledPairs(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a"), *testShop("shop-b")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	require.NoError(t, f.orchestrator.Disable(context.Background(), models.EntityTypeProduct, "p1", "shop-b"))

	f.clients["shop-a"].On("CreateProduct", mock.Anything, mock.Anything).Return(productResponse(55), nil)
	f.clients["shop-a"].On("UpdateProductCategories", mock.Anything, 55, mock.Anything).Return(nil)

	results, err := f.orchestrator.SyncEntity(context.Background(), models.EntityTypeProduct, "p1")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "shop-a", results[0].ShopID)
	assert.Empty(t, f.clients["shop-b"].Calls)
}

func TestSyncEntityToShopPublishesSkipEvent(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	f.clients["shop-a"].On("CreateProduct", mock.Anything, mock.Anything).Return(productResponse(55), nil)
	f.clients["shop-a"].On("UpdateProductCategories", mock.Anything, 55, mock.Anything).Return(nil)

	_, err := f.orchestrator.SyncEntityToShop(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	require.NoError(t, err)

	result, err := f.orchestrator.SyncEntityToShop(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Len(t, f.events.byType(SyncSkippedEvent), 1)
}

func TestSyncCategoryTreePushesLevelsInOrder(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	categories := map[string]*models.Category{
		"accessories": {ID: "accessories", Name: "Accessories", Active: true, Position: 2},
		"parts":       {ID: "parts", Name: "Parts", Active: true, Position: 1},
		"brakes":      {ID: "brakes", Name: "Brakes", ParentID: strPtr("parts"), Active: true, Position: 1},
	}
	f := newOrchestratorFixture(shops, nil, categories)

	client := f.clients["shop-a"]
	client.On("CreateCategory", mock.Anything, mock.Anything).Return(categoryResponse(100), nil).Once()
	client.On("CreateCategory", mock.Anything, mock.Anything).Return(categoryResponse(101), nil).Once()
	client.On("CreateCategory", mock.Anything, mock.Anything).Return(categoryResponse(102), nil).Once()

	results, err := f.orchestrator.SyncCategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Len(t, client.createdCategories, 3)
	assert.Equal(t, "Parts", client.createdCategories[0].Names[0].Value)
	assert.Equal(t, "Accessories", client.createdCategories[1].Names[0].Value)
	assert.Equal(t, "Brakes", client.createdCategories[2].Names[0].Value)
	// The child carries the parent's remote id assigned within this run.
	assert.Equal(t, 100, client.createdCategories[2].ParentID)
}

func TestDetectDriftMarksConflict(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	f.clients["shop-a"].On("CreateProduct", mock.Anything, mock.Anything).Return(productResponse(55), nil)
	f.clients["shop-a"].On("UpdateProductCategories", mock.Anything, 55, mock.Anything).Return(nil)

	_, err := f.orchestrator.SyncEntityToShop(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	require.NoError(t, err)

	remote := productResponse(55)
	remote.Product.Reference = "EDITED-IN-ADMIN"
	f.clients["shop-a"].On("GetProduct", mock.Anything, 55).Return(remote, nil)

	drifted, err := f.orchestrator.DetectDrift(context.Background(), "p1", "shop-a")
	require.NoError(t, err)
	assert.True(t, drifted)

	state, _ := f.states.Get(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	assert.Equal(t, models.SyncStatusConflict, state.Status)
	assert.Contains(t, state.LastError, "EDITED-IN-ADMIN")
}

func TestDetectDriftNoChange(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	f.clients["shop-a"].On("CreateProduct", mock.Anything, mock.Anything).Return(productResponse(55), nil)
	f.clients["shop-a"].On("UpdateProductCategories", mock.Anything, 55, mock.Anything).Return(nil)

	_, err := f.orchestrator.SyncEntityToShop(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	require.NoError(t, err)

	remote := productResponse(55)
	remote.Product.Reference = product.SKU
	f.clients["shop-a"].On("GetProduct", mock.Anything, 55).Return(remote, nil)

	drifted, err := f.orchestrator.DetectDrift(context.Background(), "p1", "shop-a")
	require.NoError(t, err)
	assert.False(t, drifted)

	state, _ := f.states.Get(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	assert.Equal(t, models.SyncStatusSynced, state.Status)
}

func TestDetectDriftSkipsUnsyncedPairs(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	product := testProduct("p1")
	f := newOrchestratorFixture(shops, map[string]*models.Product{"p1": product}, nil)

	drifted, err := f.orchestrator.DetectDrift(context.Background(), "p1", "shop-a")
	require.NoError(t, err)
	assert.False(t, drifted)
	assert.Empty(t, f.clients["shop-a"].Calls)
}

func TestDisableMarksPairDisabled(t *testing.T) {
	shops := []models.Shop{*testShop("shop-a")}
	f := newOrchestratorFixture(shops, nil, nil)

	require.NoError(t, f.orchestrator.Disable(context.Background(), models.EntityTypeProduct, "p1", "shop-a"))

	state, _ := f.states.Get(context.Background(), models.EntityTypeProduct, "p1", "shop-a")
	require.NotNil(t, state)
	assert.Equal(t, models.SyncStatusDisabled, state.Status)
}
