package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// OutboxEvent is one domain event written in the same transaction as the
// state change it describes. The publisher relays it to the domain topic and
// stamps PublishedAt; rows that used up their attempts stay unpublished until
// retention removes them.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

func (e OutboxEvent) Published() bool { return e.PublishedAt != nil }

// FinalAttempt reports whether the next publish attempt is the last one allowed.
func (e OutboxEvent) FinalAttempt(maxAttempts int) bool {
	return maxAttempts > 0 && e.AttemptCount+1 >= maxAttempts
}
