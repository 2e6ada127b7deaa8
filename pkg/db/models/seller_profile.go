package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerProfile carries per-seller settings such as the digital commission rate.
type SellerProfile struct {
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	DisplayName string    `gorm:"column:display_name;not null;default:''"`
	// CommissionRate is a percentage (20 means 20%); null falls back to the platform default.
	CommissionRate decimal.NullDecimal `gorm:"column:commission_rate;type:numeric(5,2)"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
