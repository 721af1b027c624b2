package sync

import (
	"gorm.io/gorm"

	"storesync/internal/config"
	"storesync/internal/logger"
	"storesync/internal/models"
	"storesync/internal/prestashop"
)

// Build wires the gorm repositories, both strategies and the per-shop
// client factory into a ready orchestrator. The API server and the
// worker share this setup.
func Build(db *gorm.DB, cfg config.SyncConfig, events EventPublisher, log *logger.Logger) *Orchestrator {
	states := NewStateRepository(db)
	mappings := NewMappingRepository(db)
	logs := NewLogRepository(db)
	products := NewProductRepository(db)
	categories := NewCategoryRepository(db)
	shops := NewShopRepository(db)

	registry := NewRegistry(
		NewProductStrategy(products, states, mappings, logs, cfg, log),
		NewCategoryStrategy(categories, states, mappings, logs, log),
	)

	clients := func(shop *models.Shop) StoreClient {
		return prestashop.NewClient(shop.URL, shop.APIKey, shop.APIVersion, log)
	}

	return NewOrchestrator(shops, categories, states, registry, clients, events, log)
}
