package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/cart"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type addCartItemRequest struct {
	ProductID       *uuid.UUID    `json:"product_id"`
	VariantID       *uuid.UUID    `json:"variant_id"`
	CollectionID    *uuid.UUID    `json:"collection_id"`
	Quantity        int           `json:"quantity" validate:"min=1,max=1000"`
	Customization   types.JSONMap `json:"customization"`
	SelectedVariant *string       `json:"selected_variant" validate:"omitempty,max=200"`
}

func (r *addCartItemRequest) Sanitize() {
	r.SelectedVariant = validators.SanitizeOptional(r.SelectedVariant, 200)
}

func (r addCartItemRequest) line() pricing.CartLine {
	return pricing.CartLine{
		ProductID:       r.ProductID,
		VariantID:       r.VariantID,
		CollectionID:    r.CollectionID,
		Quantity:        r.Quantity,
		Customization:   r.Customization,
		SelectedVariant: r.SelectedVariant,
	}
}

func ListCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]cartItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, newCartItemResponse(item))
		}
		responses.WriteSuccess(w, out)
	}
}

// AddCartItem stores a line reference. Prices are resolved at checkout.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.AddItem(r.Context(), actor, req.line())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, newCartItemResponse(*item))
	}
}

func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveItem(r.Context(), actor, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Clear(r.Context(), actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
