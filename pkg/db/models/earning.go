package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// Earning is a seller's realized share of one paid order.
type Earning struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID   uuid.UUID           `gorm:"column:creator_id;type:uuid;not null;uniqueIndex:ux_earnings_order_creator,priority:2"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_earnings_order_creator,priority:1"`
	AmountCents int64               `gorm:"column:amount_cents;not null"`
	Status      enums.EarningStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
