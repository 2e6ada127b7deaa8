package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/ledger"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type requestPayoutRequest struct {
	AmountCents int64         `json:"amount_cents" validate:"required,min=1"`
	Method      string        `json:"method" validate:"required"`
	Details     types.JSONMap `json:"details"`
}

type decidePayoutRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note" validate:"omitempty,max=1000"`
}

func (r *requestPayoutRequest) Sanitize() {
	r.Method = strings.ToLower(validators.SanitizeString(r.Method, 40))
}

func (r *decidePayoutRequest) Sanitize() {
	r.Status = strings.ToLower(validators.SanitizeString(r.Status, 40))
	r.Note = validators.SanitizeOptional(r.Note, 1000)
}

func EarningsSummary(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		summary, err := svc.Summary(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func ListEarnings(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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
		page, err := svc.ListEarnings(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newEarningResponse))
	}
}

func ListPayouts(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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
		page, err := svc.ListPayouts(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newPayoutResponse))
	}
}

// RequestPayout answers 201 with the pending payout.
func RequestPayout(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req requestPayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payout, err := svc.RequestPayout(r.Context(), actor, ledger.RequestPayoutInput{
			AmountCents: req.AmountCents,
			Method:      req.Method,
			Details:     req.Details,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, newPayoutResponse(*payout))
	}
}

func ListPendingPayouts(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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
		page, err := svc.ListPendingPayouts(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newPayoutResponse))
	}
}

func DecidePayout(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		payoutID, err := validators.ParseUUIDParam(r, "payoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req decidePayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payout, err := svc.ApprovePayout(r.Context(), actor, payoutID, ledger.ApprovePayoutInput{Status: req.Status, Note: req.Note})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPayoutResponse(*payout))
	}
}
