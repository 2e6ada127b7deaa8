package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// CartItem is a stored cart line. It never carries a price.
type CartItem struct {
	ID              uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID     `gorm:"column:buyer_id;type:uuid;not null;index"`
	ProductID       *uuid.UUID    `gorm:"column:product_id;type:uuid"`
	VariantID       *uuid.UUID    `gorm:"column:variant_id;type:uuid"`
	CollectionID    *uuid.UUID    `gorm:"column:collection_id;type:uuid"`
	Quantity        int           `gorm:"column:quantity;not null"`
	Customization   types.JSONMap `gorm:"column:customization;type:jsonb;serializer:json"`
	SelectedVariant *string       `gorm:"column:selected_variant"`
	CreatedAt       time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
