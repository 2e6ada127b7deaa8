package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection bundles several digital items under one seller-entered price.
type Collection struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Title    string    `gorm:"column:title;not null"`
	// BundlePrice is free-form text from the seller form, in minor units.
	BundlePrice string         `gorm:"column:bundle_price;type:text"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
