package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// OrderCreatedEvent is emitted for every order a checkout creates.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID              `json:"order_id"`
	CheckoutGroupID  uuid.UUID              `json:"checkout_group_id"`
	BuyerID          uuid.UUID              `json:"buyer_id"`
	FulfillmentClass enums.FulfillmentClass `json:"fulfillment_class"`
	Status           enums.SettlementStatus `json:"status"`
	PaymentMethod    enums.PaymentMethod    `json:"payment_method"`
	TotalCents       int64                  `json:"total_cents"`
	SellerIDs        []uuid.UUID            `json:"seller_ids"`
}
