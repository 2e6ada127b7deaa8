package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingRate is one row of a seller's regional flat-rate table.
type ShippingRate struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Region      string    `gorm:"column:region;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	MinDays     *int      `gorm:"column:min_days"`
	MaxDays     *int      `gorm:"column:max_days"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
