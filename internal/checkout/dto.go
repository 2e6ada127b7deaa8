package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/internal/checkout/helpers"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// QuoteInput prices a cart for a destination without writing anything.
// Empty Lines means the buyer's stored cart.
type QuoteInput struct {
	Actor  types.Actor
	Lines  []pricing.CartLine
	Region string
}

// QuoteResult previews the sub-orders a checkout would create.
type QuoteResult struct {
	SubOrders     []helpers.SubOrder
	Shipping      types.ShippingBreakdown
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64
	Unresolved    bool
}

// CheckoutInput is everything a buyer submits to place orders.
type CheckoutInput struct {
	Actor           types.Actor
	Lines           []pricing.CartLine
	PaymentMethod   string
	PaymentProof    *string
	ShippingAddress *types.Address
	// QuotedShippingCents is the shipping total the client showed the buyer, if any.
	QuotedShippingCents *int64
}

// CheckoutResult lists the orders created by one checkout.
type CheckoutResult struct {
	CheckoutGroupID uuid.UUID
	Orders          []models.Order
	Warnings        []StockRaceWarning
}

// StockRaceWarning flags a tracked product whose stock ran out between
// checkout and the post-commit decrement. The order stands.
type StockRaceWarning struct {
	ProductID uuid.UUID `json:"product_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Quantity  int       `json:"quantity"`
	Message   string    `json:"message"`
}
