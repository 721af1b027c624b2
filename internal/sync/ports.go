package sync

import (
	"context"

	"storesync/internal/models"
	"storesync/internal/prestashop"
)

// StoreClient is the slice of the storefront API the strategies need.
// *prestashop.Client satisfies it; tests substitute mocks.
type StoreClient interface {
	CreateProduct(ctx context.Context, payload *prestashop.ProductPayload) (*prestashop.ProductResponse, error)
	UpdateProduct(ctx context.Context, remoteID int, payload *prestashop.ProductPayload) (*prestashop.ProductResponse, error)
	GetProduct(ctx context.Context, remoteID int) (*prestashop.ProductResponse, error)
	CreateCategory(ctx context.Context, payload *prestashop.CategoryPayload) (*prestashop.CategoryResponse, error)
	UpdateCategory(ctx context.Context, remoteID int, payload *prestashop.CategoryPayload) (*prestashop.CategoryResponse, error)
	UpdateProductCategories(ctx context.Context, remoteID int, categoryIDs []int) error
	UploadImage(ctx context.Context, productRemoteID int, url string) (*prestashop.ImageResponse, error)
	SetCoverImage(ctx context.Context, productRemoteID, imageRemoteID int) error
	SetSpecificPrice(ctx context.Context, productRemoteID int, payload prestashop.SpecificPricePayload) error
	SetProductFeatures(ctx context.Context, productRemoteID int, features []prestashop.FeaturePayload) error
	SetCompatibilities(ctx context.Context, productRemoteID int, compatibilities []prestashop.CompatibilityPayload) error
	CreateCombination(ctx context.Context, productRemoteID int, payload prestashop.CombinationPayload) (*prestashop.CombinationResponse, error)
}

// StateStore persists SyncState rows. Transaction runs fn against a store
// bound to a single database transaction; returning an error rolls every
// write inside fn back.
type StateStore interface {
	FirstOrCreate(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error)
	Get(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error)
	Save(ctx context.Context, state *models.SyncState) error
	Transaction(ctx context.Context, fn func(StateStore) error) error
}

// MappingStore is the (shop, entity type, local id) → remote id table.
type MappingStore interface {
	RemoteID(ctx context.Context, shopID string, entityType models.EntityType, localID string) (int, bool, error)
	Save(ctx context.Context, shopID string, entityType models.EntityType, localID string, remoteID int) error
}

// LogStore appends to the audit trail. Entries are never mutated.
type LogStore interface {
	Append(ctx context.Context, entry *models.SyncLogEntry) error
}

type ProductFinder interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

type CategoryFinder interface {
	CategoryByID(ctx context.Context, id string) (*models.Category, error)
}

type CategoryLister interface {
	CategoryFinder
	Categories(ctx context.Context) ([]models.Category, error)
}

type ShopFinder interface {
	ShopByID(ctx context.Context, id string) (*models.Shop, error)
	ActiveShops(ctx context.Context) ([]models.Shop, error)
}
