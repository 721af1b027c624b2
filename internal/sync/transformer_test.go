package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/internal/models"
)

func testShop(id string) *models.Shop {
	return &models.Shop{
		ID:                   id,
		Name:                 "Shop " + id,
		URL:                  "https://shop.example.com",
		APIKey:               "key",
		APIVersion:           "1.7",
		Active:               true,
		Languages:            []string{"pl", "en"},
		RootCategoryRemoteID: 2,
	}
}

func testProduct(id string) *models.Product {
	return &models.Product{
		ID:         id,
		SKU:        "ABC-1",
		Name:       "Widget",
		Active:     true,
		PriceNet:   10.00,
		PriceGross: 12.30,
		Stocks: []models.WarehouseStock{
			{WarehouseID: "main", Quantity: 5},
		},
	}
}

func TestProductPayloadReplicatesLanguages(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	product := testProduct("p1")

	payload := tr.ProductPayload(product, shop, []int{14})

	require.Len(t, payload.Names, 2)
	assert.Equal(t, "pl", payload.Names[0].Language)
	assert.Equal(t, "en", payload.Names[1].Language)
	assert.Equal(t, "Widget", payload.Names[0].Value)
	assert.Equal(t, "Widget", payload.Names[1].Value)
	assert.Equal(t, "ABC-1", payload.Reference)
	assert.Equal(t, 10.00, payload.Price)
	assert.Equal(t, 5, payload.Quantity)
	require.Len(t, payload.Associations.Categories, 1)
	assert.Equal(t, 14, payload.Associations.Categories[0].ID)
	assert.Equal(t, 14, payload.DefaultCategoryID)
}

func TestProductPayloadFallsBackToRootCategory(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	product := testProduct("p1")

	payload := tr.ProductPayload(product, shop, nil)

	assert.Empty(t, payload.Associations.Categories)
	assert.Equal(t, shop.RootCategoryRemoteID, payload.DefaultCategoryID)
}

func TestProductPayloadAppliesShopOverride(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	product := testProduct("p1")
	overrideName := "Widget (B2B)"
	product.Overrides = []models.ProductShopOverride{
		{ShopID: "shop-a", Name: &overrideName},
		{ShopID: "shop-b", Name: strPtr("Other")},
	}

	payload := tr.ProductPayload(product, shop, nil)
	assert.Equal(t, "Widget (B2B)", payload.Names[0].Value)

	// Another shop keeps the default name.
	other := testShop("shop-c")
	payload = tr.ProductPayload(product, other, nil)
	assert.Equal(t, "Widget", payload.Names[0].Value)
}

func TestProductFieldsMatchOverrideAndStock(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	product := testProduct("p1")
	product.Stocks = append(product.Stocks, models.WarehouseStock{
		WarehouseID: "b2b-only",
		Quantity:    3,
		ShopIDs:     []string{"shop-b"},
	})

	fields := tr.ProductFields(product, shop, []int{14, 9})

	assert.Equal(t, "5", fields["stock"], "shop-b-only warehouse must not count")
	assert.Equal(t, "9,14", fields["categories"])
	assert.Equal(t, "10.00", fields["price (netto)"])
	assert.Equal(t, "12.30", fields["price (brutto)"])
	_, hasDescription := fields["description"]
	assert.False(t, hasDescription, "unset description is omitted, not empty")
}

func TestProductFieldsUseRemoteCategoryIDs(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	product := testProduct("p1")

	before := ChecksumOf(tr.ProductFields(product, shop, []int{14}))
	after := ChecksumOf(tr.ProductFields(product, shop, []int{15}))

	// Remapping the same local category to a different remote id must be
	// detected even though the local entity did not change.
	assert.NotEqual(t, before, after)
}

func TestCategoryPayloadCarriesRemoteParent(t *testing.T) {
	tr := NewTransformer()
	shop := testShop("shop-a")
	category := &models.Category{ID: "c1", Name: "Brakes", Active: true, Position: 3}

	payload := tr.CategoryPayload(category, shop, 41)

	assert.Equal(t, 41, payload.ParentID)
	assert.Equal(t, "Brakes", payload.Names[0].Value)
	assert.True(t, payload.Active)
	assert.Equal(t, 3, payload.Position)
}

func strPtr(s string) *string {
	return &s
}
