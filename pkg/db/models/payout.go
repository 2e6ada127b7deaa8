package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// Payout is a seller withdrawal request against their available balance.
type Payout struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	AmountCents   int64              `gorm:"column:amount_cents;not null"`
	Method        enums.PayoutMethod `gorm:"column:method;type:text;not null"`
	MethodDetails types.JSONMap      `gorm:"column:method_details;type:jsonb;serializer:json"`
	Status        enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AdminNote     *string            `gorm:"column:admin_note"`
	DecidedBy     *uuid.UUID         `gorm:"column:decided_by;type:uuid"`
	RequestedAt   time.Time          `gorm:"column:requested_at;not null"`
	ProcessedAt   *time.Time         `gorm:"column:processed_at"`
}
