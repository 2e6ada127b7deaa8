package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// OrderLine freezes the price and seller of one cart line at order time.
type OrderLine struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID          *uuid.UUID              `gorm:"column:product_id;type:uuid"`
	VariantID          *uuid.UUID              `gorm:"column:variant_id;type:uuid"`
	CollectionID       *uuid.UUID              `gorm:"column:collection_id;type:uuid"`
	SellerID           uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index"`
	Title              string                  `gorm:"column:title;not null"`
	FulfillmentClass   enums.FulfillmentClass  `gorm:"column:fulfillment_class;type:text;not null"`
	UnitPriceCents     int64                   `gorm:"column:unit_price_cents;not null"`
	Quantity           int                     `gorm:"column:quantity;not null"`
	LineTotalCents     int64                   `gorm:"column:line_total_cents;not null"`
	PlatformFeeCents   int64                   `gorm:"column:platform_fee_cents;not null"`
	SellerEarningCents int64                   `gorm:"column:seller_earning_cents;not null"`
	Customization      types.JSONMap           `gorm:"column:customization;type:jsonb;serializer:json"`
	SelectedVariant    *string                 `gorm:"column:selected_variant"`
	FulfillmentStatus  enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'pending'"`
	TrackingNumber     *string                 `gorm:"column:tracking_number"`
	RejectionReason    *string                 `gorm:"column:rejection_reason"`
	AcceptedAt         *time.Time              `gorm:"column:accepted_at"`
	PreparingAt        *time.Time              `gorm:"column:preparing_at"`
	ShippedAt          *time.Time              `gorm:"column:shipped_at"`
	DeliveredAt        *time.Time              `gorm:"column:delivered_at"`
	RejectedAt         *time.Time              `gorm:"column:rejected_at"`
	CancelledAt        *time.Time              `gorm:"column:cancelled_at"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
