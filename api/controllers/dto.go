package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type orderLineResponse struct {
	ID                 uuid.UUID     `json:"id"`
	OrderID            uuid.UUID     `json:"order_id"`
	ProductID          *uuid.UUID    `json:"product_id,omitempty"`
	VariantID          *uuid.UUID    `json:"variant_id,omitempty"`
	CollectionID       *uuid.UUID    `json:"collection_id,omitempty"`
	SellerID           uuid.UUID     `json:"seller_id"`
	Title              string        `json:"title"`
	FulfillmentClass   string        `json:"fulfillment_class"`
	UnitPriceCents     int64         `json:"unit_price_cents"`
	Quantity           int           `json:"quantity"`
	LineTotalCents     int64         `json:"line_total_cents"`
	PlatformFeeCents   int64         `json:"platform_fee_cents"`
	SellerEarningCents int64         `json:"seller_earning_cents"`
	Customization      types.JSONMap `json:"customization,omitempty"`
	SelectedVariant    *string       `json:"selected_variant,omitempty"`
	FulfillmentStatus  string        `json:"fulfillment_status"`
	TrackingNumber     *string       `json:"tracking_number,omitempty"`
	RejectionReason    *string       `json:"rejection_reason,omitempty"`
	AcceptedAt         *time.Time    `json:"accepted_at,omitempty"`
	PreparingAt        *time.Time    `json:"preparing_at,omitempty"`
	ShippedAt          *time.Time    `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time    `json:"delivered_at,omitempty"`
	RejectedAt         *time.Time    `json:"rejected_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

func newOrderLineResponse(line models.OrderLine) orderLineResponse {
	return orderLineResponse{
		ID:                 line.ID,
		OrderID:            line.OrderID,
		ProductID:          line.ProductID,
		VariantID:          line.VariantID,
		CollectionID:       line.CollectionID,
		SellerID:           line.SellerID,
		Title:              line.Title,
		FulfillmentClass:   string(line.FulfillmentClass),
		UnitPriceCents:     line.UnitPriceCents,
		Quantity:           line.Quantity,
		LineTotalCents:     line.LineTotalCents,
		PlatformFeeCents:   line.PlatformFeeCents,
		SellerEarningCents: line.SellerEarningCents,
		Customization:      line.Customization,
		SelectedVariant:    line.SelectedVariant,
		FulfillmentStatus:  string(line.FulfillmentStatus),
		TrackingNumber:     line.TrackingNumber,
		RejectionReason:    line.RejectionReason,
		AcceptedAt:         line.AcceptedAt,
		PreparingAt:        line.PreparingAt,
		ShippedAt:          line.ShippedAt,
		DeliveredAt:        line.DeliveredAt,
		RejectedAt:         line.RejectedAt,
		CancelledAt:        line.CancelledAt,
		CreatedAt:          line.CreatedAt,
	}
}

type orderResponse struct {
	ID                  uuid.UUID               `json:"id"`
	CheckoutGroupID     uuid.UUID               `json:"checkout_group_id"`
	BuyerID             uuid.UUID               `json:"buyer_id"`
	FulfillmentClass    string                  `json:"fulfillment_class"`
	SubtotalCents       int64                   `json:"subtotal_cents"`
	ShippingCents       int64                   `json:"shipping_cents"`
	TotalCents          int64                   `json:"total_cents"`
	PlatformFeeCents    int64                   `json:"platform_fee_cents"`
	SellerEarningsCents int64                   `json:"seller_earnings_cents"`
	PaymentMethod       string                  `json:"payment_method"`
	Status              string                  `json:"status"`
	IsVerified          bool                    `json:"is_verified"`
	VerifiedAt          *time.Time              `json:"verified_at,omitempty"`
	RejectionReason     *string                 `json:"rejection_reason,omitempty"`
	ShippingAddress     *types.Address          `json:"shipping_address,omitempty"`
	ShippingRegion      string                  `json:"shipping_region,omitempty"`
	ShippingBreakdown   types.ShippingBreakdown `json:"shipping_breakdown,omitempty"`
	Lines               []orderLineResponse     `json:"lines"`
	CreatedAt           time.Time               `json:"created_at"`
}

func newOrderResponse(order models.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, newOrderLineResponse(line))
	}
	return orderResponse{
		ID:                  order.ID,
		CheckoutGroupID:     order.CheckoutGroupID,
		BuyerID:             order.BuyerID,
		FulfillmentClass:    string(order.FulfillmentClass),
		SubtotalCents:       order.SubtotalCents,
		ShippingCents:       order.ShippingCents,
		TotalCents:          order.TotalCents,
		PlatformFeeCents:    order.PlatformFeeCents,
		SellerEarningsCents: order.SellerEarningsCents,
		PaymentMethod:       string(order.PaymentMethod),
		Status:              string(order.Status),
		IsVerified:          order.IsVerified,
		VerifiedAt:          order.VerifiedAt,
		RejectionReason:     order.RejectionReason,
		ShippingAddress:     order.ShippingAddress,
		ShippingRegion:      order.ShippingRegion,
		ShippingBreakdown:   order.ShippingBreakdown,
		Lines:               lines,
		CreatedAt:           order.CreatedAt,
	}
}

type cartItemResponse struct {
	ID              uuid.UUID     `json:"id"`
	ProductID       *uuid.UUID    `json:"product_id,omitempty"`
	VariantID       *uuid.UUID    `json:"variant_id,omitempty"`
	CollectionID    *uuid.UUID    `json:"collection_id,omitempty"`
	Quantity        int           `json:"quantity"`
	Customization   types.JSONMap `json:"customization,omitempty"`
	SelectedVariant *string       `json:"selected_variant,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

func newCartItemResponse(item models.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:              item.ID,
		ProductID:       item.ProductID,
		VariantID:       item.VariantID,
		CollectionID:    item.CollectionID,
		Quantity:        item.Quantity,
		Customization:   item.Customization,
		SelectedVariant: item.SelectedVariant,
		CreatedAt:       item.CreatedAt,
	}
}

type historyResponse struct {
	ID         uuid.UUID `json:"id"`
	Sequence   int       `json:"sequence"`
	From       string    `json:"from_status"`
	To         string    `json:"to_status"`
	Note       *string   `json:"note,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"created_at"`
}

func newHistoryResponse(row models.StatusHistory) historyResponse {
	return historyResponse{
		ID:         row.ID,
		Sequence:   row.Sequence,
		From:       string(row.FromStatus),
		To:         string(row.ToStatus),
		Note:       row.Note,
		ActorID:    row.ActorID,
		ActorRole:  string(row.ActorRole),
		OccurredAt: row.CreatedAt,
	}
}

type shippingRateResponse struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Region      string    `json:"region"`
	AmountCents int64     `json:"amount_cents"`
	MinDays     *int      `json:"min_days,omitempty"`
	MaxDays     *int      `json:"max_days,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newShippingRateResponse(rate models.ShippingRate) shippingRateResponse {
	return shippingRateResponse{
		ID:          rate.ID,
		SellerID:    rate.SellerID,
		Region:      rate.Region,
		AmountCents: rate.AmountCents,
		MinDays:     rate.MinDays,
		MaxDays:     rate.MaxDays,
		CreatedAt:   rate.CreatedAt,
	}
}

type earningResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newEarningResponse(e models.Earning) earningResponse {
	return earningResponse{
		ID:          e.ID,
		OrderID:     e.OrderID,
		AmountCents: e.AmountCents,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

type payoutResponse struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	AmountCents   int64         `json:"amount_cents"`
	Method        string        `json:"method"`
	MethodDetails types.JSONMap `json:"method_details,omitempty"`
	Status        string        `json:"status"`
	AdminNote     *string       `json:"admin_note,omitempty"`
	RequestedAt   time.Time     `json:"requested_at"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty"`
}

func newPayoutResponse(p models.Payout) payoutResponse {
	return payoutResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		AmountCents:   p.AmountCents,
		Method:        string(p.Method),
		MethodDetails: p.MethodDetails,
		Status:        string(p.Status),
		AdminNote:     p.AdminNote,
		RequestedAt:   p.RequestedAt,
		ProcessedAt:   p.ProcessedAt,
	}
}

type notificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
