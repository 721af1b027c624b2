package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/stretchr/testify/mock"

	"storesync/internal/models"
	"storesync/internal/prestashop"
)

// mockStoreClient is a testify mock over the StoreClient interface. It
// additionally records write payloads so tests can inspect what was
// actually sent.
type mockStoreClient struct {
	mock.Mock

	mu                gosync.Mutex
	createdProducts   []*prestashop.ProductPayload
	updatedProducts   []*prestashop.ProductPayload
	createdCategories []*prestashop.CategoryPayload
}

func (m *mockStoreClient) CreateProduct(ctx context.Context, payload *prestashop.ProductPayload) (*prestashop.ProductResponse, error) {
	m.mu.Lock()
	m.createdProducts = append(m.createdProducts, payload)
	m.mu.Unlock()
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.ProductResponse), args.Error(1)
}

func (m *mockStoreClient) UpdateProduct(ctx context.Context, remoteID int, payload *prestashop.ProductPayload) (*prestashop.ProductResponse, error) {
	m.mu.Lock()
	m.updatedProducts = append(m.updatedProducts, payload)
	m.mu.Unlock()
	args := m.Called(ctx, remoteID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.ProductResponse), args.Error(1)
}

func (m *mockStoreClient) GetProduct(ctx context.Context, remoteID int) (*prestashop.ProductResponse, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.ProductResponse), args.Error(1)
}

func (m *mockStoreClient) CreateCategory(ctx context.Context, payload *prestashop.CategoryPayload) (*prestashop.CategoryResponse, error) {
	m.mu.Lock()
	m.createdCategories = append(m.createdCategories, payload)
	m.mu.Unlock()
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.CategoryResponse), args.Error(1)
}

func (m *mockStoreClient) UpdateCategory(ctx context.Context, remoteID int, payload *prestashop.CategoryPayload) (*prestashop.CategoryResponse, error) {
	args := m.Called(ctx, remoteID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.CategoryResponse), args.Error(1)
}

func (m *mockStoreClient) UpdateProductCategories(ctx context.Context, remoteID int, categoryIDs []int) error {
	args := m.Called(ctx, remoteID, categoryIDs)
	return args.Error(0)
}

func (m *mockStoreClient) UploadImage(ctx context.Context, productRemoteID int, url string) (*prestashop.ImageResponse, error) {
	args := m.Called(ctx, productRemoteID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.ImageResponse), args.Error(1)
}

func (m *mockStoreClient) SetCoverImage(ctx context.Context, productRemoteID, imageRemoteID int) error {
	args := m.Called(ctx, productRemoteID, imageRemoteID)
	return args.Error(0)
}

func (m *mockStoreClient) SetSpecificPrice(ctx context.Context, productRemoteID int, payload prestashop.SpecificPricePayload) error {
	args := m.Called(ctx, productRemoteID, payload)
	return args.Error(0)
}

func (m *mockStoreClient) SetProductFeatures(ctx context.Context, productRemoteID int, features []prestashop.FeaturePayload) error {
	args := m.Called(ctx, productRemoteID, features)
	return args.Error(0)
}

func (m *mockStoreClient) SetCompatibilities(ctx context.Context, productRemoteID int, compatibilities []prestashop.CompatibilityPayload) error {
	args := m.Called(ctx, productRemoteID, compatibilities)
	return args.Error(0)
}

func (m *mockStoreClient) CreateCombination(ctx context.Context, productRemoteID int, payload prestashop.CombinationPayload) (*prestashop.CombinationResponse, error) {
	args := m.Called(ctx, productRemoteID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prestashop.CombinationResponse), args.Error(1)
}

func productResponse(id int) *prestashop.ProductResponse {
	resp := &prestashop.ProductResponse{}
	resp.Product.ID = id
	return resp
}

func categoryResponse(id int) *prestashop.CategoryResponse {
	resp := &prestashop.CategoryResponse{}
	resp.Category.ID = id
	return resp
}

// fakeStateStore keeps SyncState rows in memory and records every status
// written, so tests can assert the pending→syncing→synced transitions.
type fakeStateStore struct {
	mu      gosync.Mutex
	states  map[string]*models.SyncState
	history map[string][]models.SyncStatus
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		states:  make(map[string]*models.SyncState),
		history: make(map[string][]models.SyncStatus),
	}
}

func stateKey(entityType models.EntityType, entityID, shopID string) string {
	return fmt.Sprintf("%s/%s/%s", entityType, entityID, shopID)
}

func (f *fakeStateStore) FirstOrCreate(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stateKey(entityType, entityID, shopID)
	if state, ok := f.states[key]; ok {
		return state, nil
	}
	state := &models.SyncState{
		EntityType: entityType,
		EntityID:   entityID,
		ShopID:     shopID,
		Status:     models.SyncStatusPending,
	}
	f.states[key] = state
	f.history[key] = append(f.history[key], models.SyncStatusPending)
	return state, nil
}

func (f *fakeStateStore) Get(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[stateKey(entityType, entityID, shopID)], nil
}

func (f *fakeStateStore) Save(ctx context.Context, state *models.SyncState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stateKey(state.EntityType, state.EntityID, state.ShopID)
	f.states[key] = state
	f.history[key] = append(f.history[key], state.Status)
	return nil
}

func (f *fakeStateStore) Transaction(ctx context.Context, fn func(StateStore) error) error {
	return fn(f)
}

type fakeMappingStore struct {
	mu       gosync.Mutex
	mappings map[string]int
	saves    int
}

func newFakeMappingStore() *fakeMappingStore {
	return &fakeMappingStore{mappings: make(map[string]int)}
}

func mappingKey(shopID string, entityType models.EntityType, localID string) string {
	return fmt.Sprintf("%s/%s/%s", shopID, entityType, localID)
}

func (f *fakeMappingStore) RemoteID(ctx context.Context, shopID string, entityType models.EntityType, localID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	remoteID, ok := f.mappings[mappingKey(shopID, entityType, localID)]
	return remoteID, ok, nil
}

func (f *fakeMappingStore) Save(ctx context.Context, shopID string, entityType models.EntityType, localID string, remoteID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings[mappingKey(shopID, entityType, localID)] = remoteID
	f.saves++
	return nil
}

type fakeLogStore struct {
	mu      gosync.Mutex
	entries []models.SyncLogEntry
}

func (f *fakeLogStore) Append(ctx context.Context, entry *models.SyncLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogStore) byStatus(status models.SyncLogStatus) []models.SyncLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncLogEntry
	for _, e := range f.entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

type fakeProductFinder struct {
	products map[string]*models.Product
}

func (f *fakeProductFinder) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return product, nil
}

type fakeCategoryStore struct {
	categories map[string]*models.Category
}

func (f *fakeCategoryStore) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s not found", id)
	}
	return category, nil
}

func (f *fakeCategoryStore) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

type fakeShopFinder struct {
	shops []models.Shop
}

func (f *fakeShopFinder) ShopByID(ctx context.Context, id string) (*models.Shop, error) {
	for i := range f.shops {
		if f.shops[i].ID == id {
			return &f.shops[i], nil
		}
	}
	return nil, fmt.Errorf("shop %s not found", id)
}

func (f *fakeShopFinder) ActiveShops(ctx context.Context) ([]models.Shop, error) {
	var active []models.Shop
	for _, s := range f.shops {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}
