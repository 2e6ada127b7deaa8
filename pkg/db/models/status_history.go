package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// StatusHistory is the append-only audit row written for every fulfillment transition.
// Sequence numbers a line's rows from 1 in the order they were written.
type StatusHistory struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderLineID uuid.UUID               `gorm:"column:order_line_id;type:uuid;not null;index"`
	Sequence    int                     `gorm:"column:sequence;not null"`
	FromStatus  enums.FulfillmentStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus    enums.FulfillmentStatus `gorm:"column:to_status;type:text;not null"`
	Note        *string                 `gorm:"column:note"`
	ActorID     uuid.UUID               `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole   enums.ActorRole         `gorm:"column:actor_role;type:text;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (StatusHistory) TableName() string { return "status_history" }
