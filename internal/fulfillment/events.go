package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// LineStatusChangedEvent is the outbox payload for every fulfillment transition.
type LineStatusChangedEvent struct {
	OrderLineID     uuid.UUID               `json:"order_line_id"`
	OrderID         uuid.UUID               `json:"order_id"`
	SellerID        uuid.UUID               `json:"seller_id"`
	BuyerID         uuid.UUID               `json:"buyer_id"`
	From            enums.FulfillmentStatus `json:"from"`
	To              enums.FulfillmentStatus `json:"to"`
	TrackingNumber  *string                 `json:"tracking_number,omitempty"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	Note            *string                 `json:"note,omitempty"`
	OccurredAt      time.Time               `json:"occurred_at"`
}
