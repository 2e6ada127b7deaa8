package controllers

import (
	"net/http"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/shipping"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
)

type createShippingRateRequest struct {
	Region      string `json:"region" validate:"required,max=120"`
	AmountCents int64  `json:"amount_cents" validate:"min=0"`
	MinDays     *int   `json:"min_days" validate:"omitempty,min=0"`
	MaxDays     *int   `json:"max_days" validate:"omitempty,min=0"`
}

func (r *createShippingRateRequest) Sanitize() { r.Region = validators.SanitizeString(r.Region, 120) }

func ListShippingRates(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "shipping")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		rates, err := svc.ListRates(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]shippingRateResponse, 0, len(rates))
		for _, rate := range rates {
			out = append(out, newShippingRateResponse(rate))
		}
		responses.WriteSuccess(w, out)
	}
}

func CreateShippingRate(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "shipping")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req createShippingRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.CreateRate(r.Context(), actor, shipping.CreateRateInput{
			Region:      req.Region,
			AmountCents: req.AmountCents,
			MinDays:     req.MinDays,
			MaxDays:     req.MaxDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, newShippingRateResponse(*rate))
	}
}

func DeleteShippingRate(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "shipping")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		rateID, err := validators.ParseUUIDParam(r, "rateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteRate(r.Context(), actor, rateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
