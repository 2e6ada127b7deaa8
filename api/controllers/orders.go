package controllers

import (
	"net/http"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
)

// ListBuyerOrders returns the caller's orders, newest first.
func ListBuyerOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		params, ok := pageParams(w, r, logg)
		if !ok {
			return
		}
		page, err := svc.ListBuyerOrders(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newOrderResponse))
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// ListOrderLines is the seller queue. Admins see every seller unless
// seller_id is given; sellers always see only their own lines.
func ListOrderLines(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		params, ok := pageParams(w, r, logg)
		if !ok {
			return
		}

		var filters orders.SellerLineFilters
		if actor.IsAdmin() {
			sellerID, err := validators.ParseOptionalUUIDQuery(r, "seller_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.SellerID = sellerID
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseFulfillmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := r.URL.Query().Get("fulfillment_class"); raw != "" {
			class, err := enums.ParseFulfillmentClass(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment class filter"))
				return
			}
			filters.FulfillmentClass = &class
		}

		page, err := svc.ListSellerLines(r.Context(), actor, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newOrderLineResponse))
	}
}
