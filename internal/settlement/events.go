package settlement

import "github.com/google/uuid"

// SellerEarning is one seller's realized share inside an order.paid event.
type SellerEarning struct {
	SellerID    uuid.UUID `json:"seller_id"`
	AmountCents int64     `json:"amount_cents"`
}

// OrderPaidEvent is emitted once per order when its earnings are realized.
type OrderPaidEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	CheckoutGroupID  uuid.UUID       `json:"checkout_group_id"`
	BuyerID          uuid.UUID       `json:"buyer_id"`
	TotalCents       int64           `json:"total_cents"`
	PlatformFeeCents int64           `json:"platform_fee_cents"`
	Earnings         []SellerEarning `json:"earnings"`
	FrozenShipping   bool            `json:"frozen_shipping"`
}

// PaymentRejectedEvent is emitted when an admin declines a manual payment.
type PaymentRejectedEvent struct {
	OrderID          uuid.UUID   `json:"order_id"`
	BuyerID          uuid.UUID   `json:"buyer_id"`
	Reason           string      `json:"reason"`
	CancelledLineIDs []uuid.UUID `json:"cancelled_line_ids"`
}
