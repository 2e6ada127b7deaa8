package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout/helpers"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type quoteRequest struct {
	Lines  []pricing.CartLine `json:"lines" validate:"omitempty,max=100,dive"`
	Region string             `json:"region" validate:"omitempty,max=120"`
}

type checkoutRequest struct {
	Lines               []pricing.CartLine `json:"lines" validate:"omitempty,max=100,dive"`
	PaymentMethod       string             `json:"payment_method" validate:"required"`
	PaymentProof        *string            `json:"payment_proof" validate:"omitempty,max=2048"`
	ShippingAddress     *types.Address     `json:"shipping_address"`
	QuotedShippingCents *int64             `json:"quoted_shipping_cents" validate:"omitempty,min=0"`
}

func (r *quoteRequest) Sanitize() { r.Region = validators.SanitizeString(r.Region, 120) }

func (r *checkoutRequest) Sanitize() {
	r.PaymentMethod = strings.ToLower(validators.SanitizeString(r.PaymentMethod, 40))
	r.PaymentProof = validators.SanitizeOptional(r.PaymentProof, 2048)
}

type quoteLineResponse struct {
	ProductID          *uuid.UUID `json:"product_id,omitempty"`
	VariantID          *uuid.UUID `json:"variant_id,omitempty"`
	CollectionID       *uuid.UUID `json:"collection_id,omitempty"`
	SellerID           uuid.UUID  `json:"seller_id"`
	Title              string     `json:"title"`
	Quantity           int        `json:"quantity"`
	UnitPriceCents     int64      `json:"unit_price_cents"`
	LineTotalCents     int64      `json:"line_total_cents"`
	PlatformFeeCents   int64      `json:"platform_fee_cents"`
	SellerEarningCents int64      `json:"seller_earning_cents"`
}

type subOrderResponse struct {
	FulfillmentClass    string                  `json:"fulfillment_class"`
	Lines               []quoteLineResponse     `json:"lines"`
	Shipping            types.ShippingBreakdown `json:"shipping,omitempty"`
	SubtotalCents       int64                   `json:"subtotal_cents"`
	ShippingCents       int64                   `json:"shipping_cents"`
	TotalCents          int64                   `json:"total_cents"`
	PlatformFeeCents    int64                   `json:"platform_fee_cents"`
	SellerEarningsCents int64                   `json:"seller_earnings_cents"`
}

type quoteResponse struct {
	SubOrders     []subOrderResponse      `json:"sub_orders"`
	Shipping      types.ShippingBreakdown `json:"shipping"`
	SubtotalCents int64                   `json:"subtotal_cents"`
	ShippingCents int64                   `json:"shipping_cents"`
	TotalCents    int64                   `json:"total_cents"`
	Unresolved    bool                    `json:"shipping_unresolved"`
}

type checkoutResponse struct {
	CheckoutGroupID uuid.UUID                   `json:"checkout_group_id"`
	Orders          []orderResponse             `json:"orders"`
	Warnings        []checkout.StockRaceWarning `json:"warnings,omitempty"`
}

func newSubOrderResponse(sub helpers.SubOrder) subOrderResponse {
	lines := make([]quoteLineResponse, 0, len(sub.Lines))
	for _, line := range sub.Lines {
		lines = append(lines, quoteLineResponse{
			ProductID:          line.ProductID,
			VariantID:          line.VariantID,
			CollectionID:       line.CollectionID,
			SellerID:           line.SellerID,
			Title:              line.Title,
			Quantity:           line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			LineTotalCents:     line.LineTotalCents(),
			PlatformFeeCents:   line.PlatformFeeCents,
			SellerEarningCents: line.SellerEarningCents,
		})
	}
	return subOrderResponse{
		FulfillmentClass:    string(sub.FulfillmentClass),
		Lines:               lines,
		Shipping:            sub.Shipping,
		SubtotalCents:       sub.SubtotalCents,
		ShippingCents:       sub.ShippingCents,
		TotalCents:          sub.TotalCents,
		PlatformFeeCents:    sub.PlatformFeeCents,
		SellerEarningsCents: sub.SellerEarningsCents,
	}
}

// CheckoutQuote prices the submitted lines, or the stored cart, without writing.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "checkout")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Quote(r.Context(), checkout.QuoteInput{Actor: actor, Lines: req.Lines, Region: req.Region})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subOrders := make([]subOrderResponse, 0, len(result.SubOrders))
		for _, sub := range result.SubOrders {
			subOrders = append(subOrders, newSubOrderResponse(sub))
		}
		responses.WriteSuccess(w, quoteResponse{
			SubOrders:     subOrders,
			Shipping:      result.Shipping,
			SubtotalCents: result.SubtotalCents,
			ShippingCents: result.ShippingCents,
			TotalCents:    result.TotalCents,
			Unresolved:    result.Unresolved,
		})
	}
}

// CheckoutExecute places the orders and answers 201 with every sub-order.
func CheckoutExecute(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "checkout")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Execute(r.Context(), checkout.CheckoutInput{
			Actor:               actor,
			Lines:               req.Lines,
			PaymentMethod:       req.PaymentMethod,
			PaymentProof:        req.PaymentProof,
			ShippingAddress:     req.ShippingAddress,
			QuotedShippingCents: req.QuotedShippingCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders := make([]orderResponse, 0, len(result.Orders))
		for _, order := range result.Orders {
			orders = append(orders, newOrderResponse(order))
		}
		responses.WriteCreated(w, checkoutResponse{
			CheckoutGroupID: result.CheckoutGroupID,
			Orders:          orders,
			Warnings:        result.Warnings,
		})
	}
}
