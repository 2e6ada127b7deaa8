package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

const entityName = "order line"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type transitionMetrics interface {
	IncTransition(to string)
}

// Service drives physical order lines through their fulfillment lifecycle.
type Service interface {
	Accept(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error)
	Reject(ctx context.Context, actor types.Actor, lineID uuid.UUID, reason string) (*models.OrderLine, error)
	Prepare(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error)
	Ship(ctx context.Context, actor types.Actor, lineID uuid.UUID, tracking string) (*models.OrderLine, error)
	MarkDelivered(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error)
	Cancel(ctx context.Context, actor types.Actor, lineID uuid.UUID, note string) (*models.OrderLine, error)
	History(ctx context.Context, actor types.Actor, lineID uuid.UUID) ([]models.StatusHistory, error)
}

// ServiceParams wires the fulfillment service.
type ServiceParams struct {
	Orders   orders.Repository
	History  HistoryRepository
	Tx       txRunner
	Outbox   outboxPublisher
	Notifier notifications.Notifier
	Metrics  transitionMetrics
	Logger   *logger.Logger
	Config   config.FulfillmentConfig
}

type service struct {
	orders       orders.Repository
	history      HistoryRepository
	tx           txRunner
	outbox       outboxPublisher
	notifier     notifications.Notifier
	metrics      transitionMetrics
	logg         *logger.Logger
	minReasonLen int
	now          func() time.Time
}

// NewService builds the fulfillment state machine.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("status history repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	minLen := params.Config.MinRejectionReasonLength
	if minLen <= 0 {
		minLen = 1
	}
	return &service{
		orders:       params.Orders,
		history:      params.History,
		tx:           params.Tx,
		outbox:       params.Outbox,
		notifier:     params.Notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		minReasonLen: minLen,
		now:          time.Now,
	}, nil
}

type transitionInput struct {
	to       enums.FulfillmentStatus
	note     *string
	tracking *string
	reason   *string
}

func (s *service) Accept(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.transition(ctx, actor, lineID, transitionInput{to: enums.FulfillmentStatusAccepted})
}

func (s *service) Reject(ctx context.Context, actor types.Actor, lineID uuid.UUID, reason string) (*models.OrderLine, error) {
	trimmed := strings.TrimSpace(reason)
	if len([]rune(trimmed)) < s.minReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rejection reason must be at least %d characters", s.minReasonLen)).
			WithDetails(map[string]string{"reason": fmt.Sprintf("must be at least %d characters", s.minReasonLen)})
	}
	return s.transition(ctx, actor, lineID, transitionInput{to: enums.FulfillmentStatusRejected, reason: &trimmed, note: &trimmed})
}

func (s *service) Prepare(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.transition(ctx, actor, lineID, transitionInput{to: enums.FulfillmentStatusPreparing})
}

func (s *service) Ship(ctx context.Context, actor types.Actor, lineID uuid.UUID, tracking string) (*models.OrderLine, error) {
	trimmed := strings.TrimSpace(tracking)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required").
			WithDetails(map[string]string{"tracking_number": "is required"})
	}
	return s.transition(ctx, actor, lineID, transitionInput{to: enums.FulfillmentStatusShipped, tracking: &trimmed})
}

func (s *service) MarkDelivered(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.transition(ctx, actor, lineID, transitionInput{to: enums.FulfillmentStatusDelivered})
}

func (s *service) Cancel(ctx context.Context, actor types.Actor, lineID uuid.UUID, note string) (*models.OrderLine, error) {
	input := transitionInput{to: enums.FulfillmentStatusCancelled}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		input.note = &trimmed
	}
	return s.transition(ctx, actor, lineID, input)
}

func (s *service) transition(ctx context.Context, actor types.Actor, lineID uuid.UUID, input transitionInput) (*models.OrderLine, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line id required")
	}

	var (
		line    *models.OrderLine
		buyerID uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		current, err := repo.FindLine(ctx, lineID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
		}
		if !actor.IsAdmin() && !actor.Owns(current.SellerID) {
			return pkgerrors.NotOwner(entityName)
		}
		from := current.FulfillmentStatus
		if current.FulfillmentClass != enums.FulfillmentClassPhysical || !CanTransition(from, input.to) {
			return pkgerrors.IllegalTransition(entityName, string(from), string(input.to))
		}

		now := s.now().UTC()
		updates := map[string]any{
			"fulfillment_status":      input.to,
			timestampColumn(input.to): now,
			"updated_at":              now,
		}
		if input.tracking != nil {
			updates["tracking_number"] = *input.tracking
		}
		if input.reason != nil {
			updates["rejection_reason"] = *input.reason
		}
		ok, err := repo.TransitionLine(ctx, lineID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line status")
		}
		if !ok {
			latest, err := repo.FindLine(ctx, lineID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order line")
			}
			observed := from
			if latest != nil {
				observed = latest.FulfillmentStatus
			}
			return pkgerrors.IllegalTransition(entityName, string(observed), string(input.to))
		}

		if err := s.history.WithTx(tx).Append(ctx, &models.StatusHistory{
			ID:          uuid.New(),
			OrderLineID: lineID,
			FromStatus:  from,
			ToStatus:    input.to,
			Note:        input.note,
			ActorID:     actor.UserID,
			ActorRole:   actor.Role,
			CreatedAt:   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		order, err := repo.FindOrder(ctx, current.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order != nil {
			buyerID = order.BuyerID
		}

		applyTransition(current, input, now)
		line = current

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderLineStateChanged,
			AggregateType: enums.AggregateOrderLine,
			AggregateID:   lineID,
			Actor:         outbox.ActorFrom(actor),
			OccurredAt:    now,
			Data: LineStatusChangedEvent{
				OrderLineID:     lineID,
				OrderID:         current.OrderID,
				SellerID:        current.SellerID,
				BuyerID:         buyerID,
				From:            from,
				To:              input.to,
				TrackingNumber:  input.tracking,
				RejectionReason: input.reason,
				Note:            input.note,
				OccurredAt:      now,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit line status event")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_line_id": lineID.String(),
				"attempted":     string(input.to),
				"actor_id":      actor.UserID.String(),
			})
			s.logg.Error(logCtx, "fulfillment transition failed", err)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(input.to))
	}
	if buyerID != uuid.Nil {
		s.notifier.Notify(ctx, notifications.FulfillmentUpdate(buyerID, *line))
	}
	return line, nil
}

func applyTransition(line *models.OrderLine, input transitionInput, at time.Time) {
	line.FulfillmentStatus = input.to
	line.UpdatedAt = at
	switch input.to {
	case enums.FulfillmentStatusAccepted:
		line.AcceptedAt = &at
	case enums.FulfillmentStatusPreparing:
		line.PreparingAt = &at
	case enums.FulfillmentStatusShipped:
		line.ShippedAt = &at
		line.TrackingNumber = input.tracking
	case enums.FulfillmentStatusDelivered:
		line.DeliveredAt = &at
	case enums.FulfillmentStatusRejected:
		line.RejectedAt = &at
		line.RejectionReason = input.reason
	case enums.FulfillmentStatusCancelled:
		line.CancelledAt = &at
	}
}

// History returns the audit log to the line's buyer, its seller, or an admin.
func (s *service) History(ctx context.Context, actor types.Actor, lineID uuid.UUID) ([]models.StatusHistory, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	line, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
	}
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
	}
	if !actor.IsAdmin() && !actor.Owns(line.SellerID) {
		order, err := s.orders.FindOrder(ctx, line.OrderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order == nil || !actor.Owns(order.BuyerID) {
			return nil, pkgerrors.NotOwner(entityName)
		}
	}
	rows, err := s.history.ListByLine(ctx, lineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list status history")
	}
	return rows, nil
}
