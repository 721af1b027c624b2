package sync

import (
	"storesync/internal/models"
	"storesync/internal/prestashop"
)

// Transformer converts local entities into the wire shape a storefront
// expects. It performs no reads or writes, so it can be called repeatedly
// for checksum purposes; everything shop-dependent (override, remote
// category ids, stock) is resolved by the caller and passed in.
type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// localize replicates a single local value once per configured shop
// language. PrestaShop multilingual fields are per-language value arrays.
func localize(shop *models.Shop, value string) []prestashop.LocalizedField {
	codes := shop.LanguageCodes()
	fields := make([]prestashop.LocalizedField, len(codes))
	for i, code := range codes {
		fields[i] = prestashop.LocalizedField{Language: code, Value: value}
	}
	return fields
}

// resolvedName applies the shop override when present.
func resolvedName(product *models.Product, shopID string) string {
	if o := product.OverrideFor(shopID); o != nil && o.Name != nil && *o.Name != "" {
		return *o.Name
	}
	return product.Name
}

func resolvedDescription(product *models.Product, shopID string) *string {
	if o := product.OverrideFor(shopID); o != nil && o.Description != nil && *o.Description != "" {
		return o.Description
	}
	return product.Description
}

// ProductPayload builds the wire payload for one product and shop.
// remoteCategoryIDs must already be mapped to the shop's remote ids.
func (t *Transformer) ProductPayload(product *models.Product, shop *models.Shop, remoteCategoryIDs []int) *prestashop.ProductPayload {
	net, _ := product.DefaultPrice()

	refs := make([]prestashop.IDRef, len(remoteCategoryIDs))
	for i, id := range remoteCategoryIDs {
		refs[i] = prestashop.IDRef{ID: id}
	}
	defaultCategory := shop.RootCategoryRemoteID
	if len(remoteCategoryIDs) > 0 {
		defaultCategory = remoteCategoryIDs[0]
	}

	description := ""
	if d := resolvedDescription(product, shop.ID); d != nil {
		description = *d
	}

	payload := &prestashop.ProductPayload{
		Reference:         product.SKU,
		Active:            product.Active,
		Names:             localize(shop, resolvedName(product, shop.ID)),
		Descriptions:      localize(shop, description),
		Price:             net,
		Quantity:          product.StockQuantity(shop.ID),
		DefaultCategoryID: defaultCategory,
		Associations:      prestashop.Associations{Categories: refs},
	}
	if product.EAN != nil {
		payload.EAN13 = *product.EAN
	}
	if product.Brand != nil {
		payload.Manufacturer = *product.Brand
	}
	if product.Weight != nil {
		payload.Weight = *product.Weight
	}
	if product.Width != nil {
		payload.Width = *product.Width
	}
	if product.Height != nil {
		payload.Height = *product.Height
	}
	if product.Depth != nil {
		payload.Depth = *product.Depth
	}
	return payload
}

// ProductFields assembles the canonical field map the product checksum
// and snapshot are built from. It must cover exactly what ProductPayload
// sends: name/description after override resolution, remote (not local)
// category ids, the default price tier and the shop's aggregated stock.
func (t *Transformer) ProductFields(product *models.Product, shop *models.Shop, remoteCategoryIDs []int) map[string]string {
	b := NewChecksumBuilder()
	b.Set("sku", product.SKU)
	b.Set("name", resolvedName(product, shop.ID))
	b.SetOptional("description", resolvedDescription(product, shop.ID))
	b.SetOptional("ean", product.EAN)
	b.SetOptional("brand", product.Brand)
	b.SetBool("active", product.Active)
	b.SetOptionalFloat("weight", product.Weight)
	b.SetOptionalFloat("width", product.Width)
	b.SetOptionalFloat("height", product.Height)
	b.SetOptionalFloat("depth", product.Depth)

	net, gross := product.DefaultPrice()
	b.SetPrice("price (netto)", net)
	b.SetPrice("price (brutto)", gross)

	b.SetInt("stock", product.StockQuantity(shop.ID))
	b.SetInts("categories", remoteCategoryIDs)
	return b.Fields()
}

// CategoryPayload builds the wire payload for one category. The parent's
// remote id must be resolved by the caller; a category is never pushed
// with a local parent reference.
func (t *Transformer) CategoryPayload(category *models.Category, shop *models.Shop, remoteParentID int) *prestashop.CategoryPayload {
	payload := &prestashop.CategoryPayload{
		Names:    localize(shop, category.Name),
		ParentID: remoteParentID,
		Active:   category.Active,
		Position: category.Position,
	}
	if category.Description != nil {
		payload.Descriptions = localize(shop, *category.Description)
	}
	return payload
}

// CategoryFields assembles the category checksum field map.
func (t *Transformer) CategoryFields(category *models.Category, remoteParentID int) map[string]string {
	b := NewChecksumBuilder()
	b.Set("name", category.Name)
	b.SetOptional("description", category.Description)
	b.SetBool("active", category.Active)
	b.SetInt("position", category.Position)
	b.SetInt("parent", remoteParentID)
	return b.Fields()
}
