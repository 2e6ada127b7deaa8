package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// Order is one settlement-independent sub-order produced by a checkout.
type Order struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutGroupID     uuid.UUID               `gorm:"column:checkout_group_id;type:uuid;not null;index"`
	BuyerID             uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;index"`
	FulfillmentClass    enums.FulfillmentClass  `gorm:"column:fulfillment_class;type:text;not null"`
	SubtotalCents       int64                   `gorm:"column:subtotal_cents;not null"`
	ShippingCents       int64                   `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents          int64                   `gorm:"column:total_cents;not null"`
	PlatformFeeCents    int64                   `gorm:"column:platform_fee_cents;not null"`
	SellerEarningsCents int64                   `gorm:"column:seller_earnings_cents;not null"`
	PaymentMethod       enums.PaymentMethod     `gorm:"column:payment_method;type:text;not null"`
	PaymentProof        *string                 `gorm:"column:payment_proof"`
	Status              enums.SettlementStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	IsVerified          bool                    `gorm:"column:is_verified;not null;default:false"`
	VerifiedAt          *time.Time              `gorm:"column:verified_at"`
	VerifiedBy          *uuid.UUID              `gorm:"column:verified_by;type:uuid"`
	RejectionReason     *string                 `gorm:"column:rejection_reason"`
	ShippingAddress     *types.Address          `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ShippingRegion      string                  `gorm:"column:shipping_region;not null;default:''"`
	ShippingBreakdown   types.ShippingBreakdown `gorm:"column:shipping_breakdown;type:jsonb;serializer:json"`
	Lines               []OrderLine             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
