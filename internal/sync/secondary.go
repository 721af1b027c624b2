package sync

import (
	"context"
	"fmt"

	"storesync/internal/models"
	"storesync/internal/prestashop"
)

// runSecondaries fires the dependent pushes after a successful primary
// product sync, in a fixed sequence: category associations, price tiers,
// images, features, compatibilities, variants. Each is wrapped so its
// failure is logged and reported but never fails the unit.
func (s *ProductStrategy) runSecondaries(ctx context.Context, client StoreClient,
	product *models.Product, shop *models.Shop, remoteID int, remoteCategories []int) []SubResult {

	var results []SubResult

	results = append(results, s.runSecondary(ctx, "category associations", product.ID, shop, func() error {
		return client.UpdateProductCategories(ctx, remoteID, remoteCategories)
	}))

	results = append(results, s.runSecondary(ctx, "price tiers", product.ID, shop, func() error {
		return s.syncPriceTiers(ctx, client, product, remoteID)
	}))

	if s.config.MediaAutoSync {
		results = append(results, s.runSecondary(ctx, "images", product.ID, shop, func() error {
			return s.syncImages(ctx, client, product, remoteID)
		}))
	}

	if s.config.FeatureAutoSync {
		results = append(results, s.runSecondary(ctx, "features", product.ID, shop, func() error {
			return s.syncFeatures(ctx, client, product, remoteID)
		}))
	}

	if s.config.CompatibilityAutoSync {
		results = append(results, s.runSecondary(ctx, "compatibilities", product.ID, shop, func() error {
			return s.syncCompatibilities(ctx, client, product, remoteID)
		}))
	}

	if s.config.VariantAutoSync {
		results = append(results, s.runSecondary(ctx, "variants", product.ID, shop, func() error {
			return s.dispatchVariants(ctx, client, product, remoteID)
		}))
	}

	return results
}

// runSecondary isolates one sub-sync: the error lands in the audit log
// and the SubResult, nothing else.
func (s *ProductStrategy) runSecondary(ctx context.Context, name, entityID string,
	shop *models.Shop, fn func() error) SubResult {

	err := fn()
	if err != nil {
		s.logger.Warn("secondary sync %s failed for product %s in shop %s: %v", name, entityID, shop.Name, err)
		s.logs.Append(ctx, &models.SyncLogEntry{
			ShopID:     shop.ID,
			EntityType: models.EntityTypeProduct,
			EntityID:   entityID,
			Operation:  models.SyncOperationUpdate,
			Direction:  models.SyncDirectionPush,
			Status:     models.SyncLogStatusError,
			Message:    fmt.Sprintf("%s: %v", name, err),
		})
		return SubResult{Name: name, Err: err}
	}
	return SubResult{Name: name}
}

// syncPriceTiers exports every non-default tier as a specific price.
func (s *ProductStrategy) syncPriceTiers(ctx context.Context, client StoreClient, product *models.Product, remoteID int) error {
	for _, price := range product.Prices {
		if price.PriceGroup == models.PriceGroupDefault {
			continue
		}
		err := client.SetSpecificPrice(ctx, remoteID, prestashop.SpecificPricePayload{
			PriceGroup: price.PriceGroup,
			Net:        price.Net,
			Gross:      price.Gross,
		})
		if err != nil {
			return fmt.Errorf("price group %s: %w", price.PriceGroup, err)
		}
	}
	return nil
}

func (s *ProductStrategy) syncImages(ctx context.Context, client StoreClient, product *models.Product, remoteID int) error {
	cover := product.CoverImage()
	for _, image := range product.Images {
		resp, err := client.UploadImage(ctx, remoteID, image.URL)
		if err != nil {
			return fmt.Errorf("image %s: %w", image.URL, err)
		}
		if cover != nil && image.ID == cover.ID && resp.RemoteID() != 0 {
			if err := client.SetCoverImage(ctx, remoteID, resp.RemoteID()); err != nil {
				return fmt.Errorf("cover image: %w", err)
			}
		}
	}
	return nil
}

func (s *ProductStrategy) syncFeatures(ctx context.Context, client StoreClient, product *models.Product, remoteID int) error {
	if len(product.Features) == 0 {
		return nil
	}
	features := make([]prestashop.FeaturePayload, len(product.Features))
	for i, f := range product.Features {
		features[i] = prestashop.FeaturePayload{Name: f.Name, Value: f.Value}
	}
	return client.SetProductFeatures(ctx, remoteID, features)
}

func (s *ProductStrategy) syncCompatibilities(ctx context.Context, client StoreClient, product *models.Product, remoteID int) error {
	if len(product.Compatibilities) == 0 {
		return nil
	}
	compatibilities := make([]prestashop.CompatibilityPayload, len(product.Compatibilities))
	for i, c := range product.Compatibilities {
		payload := prestashop.CompatibilityPayload{
			Make:     c.Make,
			Model:    c.Model,
			YearFrom: c.YearFrom,
			YearTo:   c.YearTo,
		}
		if c.EngineCode != nil {
			payload.EngineCode = *c.EngineCode
		}
		compatibilities[i] = payload
	}
	return client.SetCompatibilities(ctx, remoteID, compatibilities)
}

func (s *ProductStrategy) dispatchVariants(ctx context.Context, client StoreClient, product *models.Product, remoteID int) error {
	for _, variant := range product.Variants {
		_, err := client.CreateCombination(ctx, remoteID, prestashop.CombinationPayload{
			Reference:   variant.SKU,
			Attributes:  variant.Attributes,
			PriceImpact: variant.PriceDelta,
			Quantity:    variant.Quantity,
		})
		if err != nil {
			return fmt.Errorf("variant %s: %w", variant.SKU, err)
		}
	}
	return nil
}
