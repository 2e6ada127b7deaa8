package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/fulfillment"
	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type settlementMetrics interface {
	IncPaymentOutcome(status string)
	AddEarnings(cents int64)
	IncTransition(to string)
}

// Service is the admin gate in front of manual payments.
type Service interface {
	VerifyPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error)
	RejectPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID, reason string) (*models.Order, error)
}

// ServiceParams wires the payment verification gate.
type ServiceParams struct {
	Orders   orders.Repository
	History  fulfillment.HistoryRepository
	Realizer Realizer
	Tx       txRunner
	Outbox   outboxPublisher
	Notifier notifications.Notifier
	Metrics  settlementMetrics
	Logger   *logger.Logger
}

type service struct {
	orders   orders.Repository
	history  fulfillment.HistoryRepository
	realizer Realizer
	tx       txRunner
	outbox   outboxPublisher
	notifier notifications.Notifier
	metrics  settlementMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the verification gate.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("status history repository required")
	}
	if params.Realizer == nil {
		return nil, fmt.Errorf("earnings realizer required")
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
	return &service{
		orders:   params.Orders,
		history:  params.History,
		realizer: params.Realizer,
		tx:       params.Tx,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// VerifyPayment confirms a manual payment and realizes the order's earnings.
// Only the call that flips the order from pending gets to realize.
func (s *service) VerifyPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		order       *models.Order
		realization *Realization
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		now := s.now().UTC()
		verifiedBy := actor.UserID
		ok, err := repo.MarkPaid(ctx, orderID, &verifiedBy, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		loaded, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !ok {
			return settledError(loaded, enums.SettlementStatusPaid)
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		order = loaded

		realization, err = s.realizer.Realize(ctx, tx, actor, order)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "payment verification failed", err, orderID)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncPaymentOutcome(string(enums.SettlementStatusPaid))
		s.metrics.AddEarnings(realization.TotalCents)
	}
	s.notifier.Notify(ctx, notifications.PaymentVerified(*order))
	return order, nil
}

// RejectPayment declines a manual payment and cancels the order's open physical lines.
func (s *service) RejectPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID, reason string) (*models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required").
			WithDetails(map[string]string{"reason": "is required"})
	}

	var (
		order     *models.Order
		cancelled []uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		now := s.now().UTC()
		ok, err := repo.MarkRejected(ctx, orderID, reason, actor.UserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order rejected")
		}
		loaded, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !ok {
			return settledError(loaded, enums.SettlementStatusRejected)
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		order = loaded

		cancelled, err = s.cancelOpenLines(ctx, tx, actor, order, reason, now)
		if err != nil {
			return err
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentRejected,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.ActorFrom(actor),
			OccurredAt:    now,
			Data: PaymentRejectedEvent{
				OrderID:          order.ID,
				BuyerID:          order.BuyerID,
				Reason:           reason,
				CancelledLineIDs: cancelled,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payment rejected event")
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "payment rejection failed", err, orderID)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncPaymentOutcome(string(enums.SettlementStatusRejected))
		for range cancelled {
			s.metrics.IncTransition(string(enums.FulfillmentStatusCancelled))
		}
	}
	s.notifier.Notify(ctx, notifications.PaymentRejected(*order, reason))
	return order, nil
}

func (s *service) cancelOpenLines(ctx context.Context, tx *gorm.DB, actor types.Actor, order *models.Order, reason string, now time.Time) ([]uuid.UUID, error) {
	repo := s.orders.WithTx(tx)
	history := s.history.WithTx(tx)
	note := "payment rejected: " + reason

	var cancelled []uuid.UUID
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.FulfillmentClass != enums.FulfillmentClassPhysical || line.FulfillmentStatus.IsTerminal() {
			continue
		}
		if !fulfillment.CanTransition(line.FulfillmentStatus, enums.FulfillmentStatusCancelled) {
			continue
		}
		from := line.FulfillmentStatus
		ok, err := repo.TransitionLine(ctx, line.ID, from, map[string]any{
			"fulfillment_status": enums.FulfillmentStatusCancelled,
			"cancelled_at":       now,
			"updated_at":         now,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order line")
		}
		if !ok {
			continue
		}
		if err := history.Append(ctx, &models.StatusHistory{
			ID:          uuid.New(),
			OrderLineID: line.ID,
			FromStatus:  from,
			ToStatus:    enums.FulfillmentStatusCancelled,
			Note:        &note,
			ActorID:     actor.UserID,
			ActorRole:   actor.Role,
			CreatedAt:   now,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		line.FulfillmentStatus = enums.FulfillmentStatusCancelled
		line.CancelledAt = &now
		cancelled = append(cancelled, line.ID)
	}
	return cancelled, nil
}

// settledError explains why a pending-only CAS matched nothing.
func settledError(order *models.Order, attempted enums.SettlementStatus) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status == enums.SettlementStatusPaid && attempted == enums.SettlementStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid").
			WithDetails(pkgerrors.TransitionDetails{Entity: "order", Current: string(order.Status), Attempted: string(attempted)})
	}
	return pkgerrors.IllegalTransition("order", string(order.Status), string(attempted))
}

func requireAdmin(actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func (s *service) logFailure(ctx context.Context, msg string, err error, orderID uuid.UUID) {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeDependency {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "order_id", orderID.String()), msg, err)
}
