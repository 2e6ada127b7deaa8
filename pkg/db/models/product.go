package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// Product is a sellable catalog entry owned by one seller.
type Product struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	Title            string            `gorm:"column:title;not null"`
	Type             enums.ProductType `gorm:"column:type;type:text;not null;default:'digital'"`
	RequiresShipping bool              `gorm:"column:requires_shipping;not null;default:false"`
	PriceCents       int64             `gorm:"column:price_cents;not null"`
	// Stock is nil when the seller does not track inventory.
	Stock      *int             `gorm:"column:stock"`
	SalesCount int              `gorm:"column:sales_count;not null;default:0"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}

// FulfillmentClass derives whether the product ships.
func (p Product) FulfillmentClass() enums.FulfillmentClass {
	if p.RequiresShipping || p.Type == enums.ProductTypePhysical {
		return enums.FulfillmentClassPhysical
	}
	return enums.FulfillmentClassDigital
}

// ProductVariant overrides the product price for a specific option.
type ProductVariant struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Name       string         `gorm:"column:name;not null"`
	PriceCents int64          `gorm:"column:price_cents;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
