package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

const (
	paymentReminderDays  = 2
	paymentReminderBatch = 200
)

// PaymentReminderJobParams configure the unverified-payment reminder.
type PaymentReminderJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Orders   pendingOrderReader
	Outbox   reminderEmitter
	Notifier notifications.Notifier
	// AfterDays is how long an order may wait for verification before the buyer is reminded.
	AfterDays int
	BatchSize int
}

type pendingOrderReader interface {
	FindPendingManualBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type reminderEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

// PaymentReminderEvent is the payload of order.payment_reminder.
type PaymentReminderEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalCents    int64               `json:"total_cents"`
	PendingSince  time.Time           `json:"pending_since"`
}

func NewPaymentReminderJob(params PaymentReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	after := params.AfterDays
	if after <= 0 {
		after = paymentReminderDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = paymentReminderBatch
	}
	return &paymentReminderJob{
		logg:     params.Logger,
		db:       params.DB,
		orders:   params.Orders,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		after:    after,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type paymentReminderJob struct {
	logg     *logger.Logger
	db       txRunner
	orders   pendingOrderReader
	outbox   reminderEmitter
	notifier notifications.Notifier
	after    int
	batch    int
	now      func() time.Time
}

func (j *paymentReminderJob) Name() string { return "payment-reminder" }

// Run reminds each buyer at most once per order. The outbox row is the
// marker: an order that already has a reminder event is skipped.
func (j *paymentReminderJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.after)
	pending, err := j.orders.FindPendingManualBefore(ctx, cutoff, j.batch)
	if err != nil {
		return 0, fmt.Errorf("query pending orders: %w", err)
	}

	var (
		errs     error
		reminded int64
	)
	for _, order := range pending {
		sent, err := j.remind(ctx, order)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		if sent {
			reminded++
			j.notifier.Notify(ctx, notifications.PaymentReminder(order))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(pending),
		"reminded":   reminded,
	})
	j.logg.Debug(logCtx, "payment reminder pass complete")
	return reminded, errs
}

func (j *paymentReminderJob) remind(ctx context.Context, order models.Order) (bool, error) {
	var emitted bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		emitted, err = j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentReminder,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.ActorFrom(types.SystemActor()),
			Version:       1,
			OccurredAt:    j.now().UTC(),
			Data: PaymentReminderEvent{
				OrderID:       order.ID,
				BuyerID:       order.BuyerID,
				PaymentMethod: order.PaymentMethod,
				TotalCents:    order.TotalCents,
				PendingSince:  order.CreatedAt,
			},
		})
		return err
	})
	return emitted, err
}
