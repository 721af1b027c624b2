package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          string   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SKU         string   `json:"sku" gorm:"unique;not null"`
	EAN         *string  `json:"ean"`
	Name        string   `json:"name" gorm:"not null"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Active      bool     `json:"active" gorm:"default:true"`
	PriceNet    float64  `json:"price_net" gorm:"type:decimal(10,2)"`
	PriceGross  float64  `json:"price_gross" gorm:"type:decimal(10,2)"`
	Weight      *float64 `json:"weight"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	Depth       *float64 `json:"depth"`
	// Category assignments used for every shop without an override.
	CategoryIDs []string  `json:"category_ids" gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Overrides       []ProductShopOverride  `json:"overrides" gorm:"foreignKey:ProductID"`
	Prices          []ProductPrice         `json:"prices" gorm:"foreignKey:ProductID"`
	Stocks          []WarehouseStock       `json:"stocks" gorm:"foreignKey:ProductID"`
	Images          []ProductImage         `json:"images" gorm:"foreignKey:ProductID"`
	Features        []ProductFeature       `json:"features" gorm:"foreignKey:ProductID"`
	Compatibilities []VehicleCompatibility `json:"compatibilities" gorm:"foreignKey:ProductID"`
	Variants        []ProductVariant       `json:"variants" gorm:"foreignKey:ProductID"`
}

// ProductShopOverride carries shop-specific values that replace the
// product's defaults when syncing to that shop.
type ProductShopOverride struct {
	ID          string   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   string   `json:"product_id" gorm:"type:uuid;not null;index"`
	ShopID      string   `json:"shop_id" gorm:"type:uuid;not null;index"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	CategoryIDs []string `json:"category_ids" gorm:"type:jsonb;serializer:json"`
}

type ProductPrice struct {
	ID         string  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  string  `json:"product_id" gorm:"type:uuid;not null;index"`
	PriceGroup string  `json:"price_group" gorm:"not null"`
	Net        float64 `json:"net" gorm:"type:decimal(10,2)"`
	Gross      float64 `json:"gross" gorm:"type:decimal(10,2)"`
}

// PriceGroupDefault is the canonical tier used for the primary product
// payload and the checksum; other tiers go out as specific prices.
const PriceGroupDefault = "retail"

type WarehouseStock struct {
	ID          string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   string `json:"product_id" gorm:"type:uuid;not null;index"`
	WarehouseID string `json:"warehouse_id" gorm:"not null"`
	Quantity    int    `json:"quantity"`
	// ShopIDs limits the warehouse to specific shops; empty means all.
	ShopIDs []string `json:"shop_ids" gorm:"type:jsonb;serializer:json"`
}

type ProductImage struct {
	ID        string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID string `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string `json:"url" gorm:"not null"`
	Position  int    `json:"position"`
	Cover     bool   `json:"cover"`
}

type ProductFeature struct {
	ID        string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID string `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Value     string `json:"value" gorm:"not null"`
}

type VehicleCompatibility struct {
	ID         string  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  string  `json:"product_id" gorm:"type:uuid;not null;index"`
	Make       string  `json:"make" gorm:"not null"`
	Model      string  `json:"model" gorm:"not null"`
	YearFrom   int     `json:"year_from"`
	YearTo     int     `json:"year_to"`
	EngineCode *string `json:"engine_code"`
}

type ProductVariant struct {
	ID         string            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  string            `json:"product_id" gorm:"type:uuid;not null;index"`
	SKU        string            `json:"sku" gorm:"unique;not null"`
	Attributes map[string]string `json:"attributes" gorm:"type:jsonb;serializer:json"`
	PriceDelta float64           `json:"price_delta" gorm:"type:decimal(10,2)"`
	Quantity   int               `json:"quantity"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// OverrideFor returns the shop-specific override, or nil when the shop
// uses the product defaults.
func (p *Product) OverrideFor(shopID string) *ProductShopOverride {
	for i := range p.Overrides {
		if p.Overrides[i].ShopID == shopID {
			return &p.Overrides[i]
		}
	}
	return nil
}

// CategoryAssignments resolves the local category ids that apply to the
// given shop, honouring a per-shop override when one exists.
func (p *Product) CategoryAssignments(shopID string) []string {
	if o := p.OverrideFor(shopID); o != nil && len(o.CategoryIDs) > 0 {
		return o.CategoryIDs
	}
	return p.CategoryIDs
}

// DefaultPrice returns the canonical price tier, falling back to the
// product's own net/gross when no tier row exists.
func (p *Product) DefaultPrice() (net, gross float64) {
	for _, price := range p.Prices {
		if price.PriceGroup == PriceGroupDefault {
			return price.Net, price.Gross
		}
	}
	return p.PriceNet, p.PriceGross
}

// StockQuantity sums quantities across all warehouses applicable to the
// given shop.
func (p *Product) StockQuantity(shopID string) int {
	total := 0
	for _, stock := range p.Stocks {
		if len(stock.ShopIDs) == 0 {
			total += stock.Quantity
			continue
		}
		for _, id := range stock.ShopIDs {
			if id == shopID {
				total += stock.Quantity
				break
			}
		}
	}
	return total
}

// CoverImage returns the image flagged as cover, or the first image by
// position when none is flagged.
func (p *Product) CoverImage() *ProductImage {
	var first *ProductImage
	for i := range p.Images {
		img := &p.Images[i]
		if img.Cover {
			return img
		}
		if first == nil || img.Position < first.Position {
			first = img
		}
	}
	return first
}
