package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/api/responses"
	"github.com/angelmondragon/craftmarket-backend/api/validators"
	"github.com/angelmondragon/craftmarket-backend/internal/fulfillment"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type rejectLineRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type shipLineRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=120"`
}

type cancelLineRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

func (r *rejectLineRequest) Sanitize() { r.Reason = validators.SanitizeString(r.Reason, 500) }

func (r *shipLineRequest) Sanitize() {
	r.TrackingNumber = validators.SanitizeString(r.TrackingNumber, 120)
}

func (r *cancelLineRequest) Sanitize() { r.Note = validators.SanitizeString(r.Note, 500) }

type lineAction func(ctx context.Context, actor types.Actor, lineID uuid.UUID, r *http.Request) (*models.OrderLine, error)

func lineActionHandler(svc fulfillment.Service, logg *logger.Logger, action lineAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "fulfillment")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := action(r.Context(), actor, lineID, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderLineResponse(*line))
	}
}

func AcceptOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, _ *http.Request) (*models.OrderLine, error) {
		return svc.Accept(ctx, actor, lineID)
	})
}

func RejectOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, r *http.Request) (*models.OrderLine, error) {
		var req rejectLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.Reject(ctx, actor, lineID, req.Reason)
	})
}

func PrepareOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, _ *http.Request) (*models.OrderLine, error) {
		return svc.Prepare(ctx, actor, lineID)
	})
}

func ShipOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, r *http.Request) (*models.OrderLine, error) {
		var req shipLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.Ship(ctx, actor, lineID, req.TrackingNumber)
	})
}

func DeliverOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, _ *http.Request) (*models.OrderLine, error) {
		return svc.MarkDelivered(ctx, actor, lineID)
	})
}

// CancelOrderLine accepts an empty body; the note is optional.
func CancelOrderLine(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineActionHandler(svc, logg, func(ctx context.Context, actor types.Actor, lineID uuid.UUID, r *http.Request) (*models.OrderLine, error) {
		var req cancelLineRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				return nil, err
			}
		}
		return svc.Cancel(ctx, actor, lineID, req.Note)
	})
}

// OrderLineHistory is readable by the buyer, the seller and admins.
func OrderLineHistory(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "fulfillment")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.History(r.Context(), actor, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]historyResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newHistoryResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}
