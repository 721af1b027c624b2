package sync

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storesync/internal/models"
)

// StateRepository is the gorm-backed StateStore. Transaction binds a new
// repository to the transaction handle so every Save inside the unit's
// critical section commits or rolls back together.
type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) FirstOrCreate(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error) {
	var state models.SyncState
	err := r.db.WithContext(ctx).
		Where(&models.SyncState{EntityType: entityType, EntityID: entityID, ShopID: shopID}).
		Attrs(&models.SyncState{Status: models.SyncStatusPending}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}
	return &state, nil
}

func (r *StateRepository) Get(ctx context.Context, entityType models.EntityType, entityID, shopID string) (*models.SyncState, error) {
	var state models.SyncState
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND shop_id = ?", entityType, entityID, shopID).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}
	return &state, nil
}

func (r *StateRepository) Save(ctx context.Context, state *models.SyncState) error {
	if err := r.db.WithContext(ctx).Save(state).Error; err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}
	return nil
}

func (r *StateRepository) Transaction(ctx context.Context, fn func(StateStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&StateRepository{db: tx})
	})
}

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) RemoteID(ctx context.Context, shopID string, entityType models.EntityType, localID string) (int, bool, error) {
	var mapping models.IdentifierMapping
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND entity_type = ? AND local_id = ?", shopID, entityType, localID).
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load identifier mapping: %w", err)
	}
	return mapping.RemoteID, true, nil
}

func (r *MappingRepository) Save(ctx context.Context, shopID string, entityType models.EntityType, localID string, remoteID int) error {
	mapping := models.IdentifierMapping{
		ShopID:     shopID,
		EntityType: entityType,
		LocalID:    localID,
		RemoteID:   remoteID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_id"}, {Name: "entity_type"}, {Name: "local_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remote_id", "updated_at"}),
		}).
		Create(&mapping).Error
	if err != nil {
		return fmt.Errorf("failed to save identifier mapping: %w", err)
	}
	return nil
}

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Append(ctx context.Context, entry *models.SyncLogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Overrides").
		Preload("Prices").
		Preload("Stocks").
		Preload("Images").
		Preload("Features").
		Preload("Compatibilities").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return &product, nil
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", id, err)
	}
	return &category, nil
}

func (r *CategoryRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) ShopByID(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to load shop %s: %w", id, err)
	}
	return &shop, nil
}

func (r *ShopRepository) ActiveShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}
