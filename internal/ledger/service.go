package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type payoutMetrics interface {
	IncPayout(status string)
}

// Service reconciles seller earnings against payout requests.
type Service interface {
	AvailableBalance(ctx context.Context, sellerID uuid.UUID) (int64, error)
	Summary(ctx context.Context, actor types.Actor) (Summary, error)
	ListEarnings(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Earning], error)
	ListPayouts(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Payout], error)
	ListPendingPayouts(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Payout], error)
	RequestPayout(ctx context.Context, actor types.Actor, input RequestPayoutInput) (*models.Payout, error)
	ApprovePayout(ctx context.Context, actor types.Actor, payoutID uuid.UUID, input ApprovePayoutInput) (*models.Payout, error)
}

// ServiceParams wires the ledger service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Notifier notifications.Notifier
	Metrics  payoutMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	notifier notifications.Notifier
	metrics  payoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires a ledger service with its repository and collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
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
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// AvailableBalance is total earnings minus processed and pending payouts.
func (s *service) AvailableBalance(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return availableBalance(ctx, s.repo, sellerID)
}

func availableBalance(ctx context.Context, repo Repository, sellerID uuid.UUID) (int64, error) {
	earned, err := repo.SumEarnings(ctx, sellerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum earnings")
	}
	committed, err := repo.SumPayouts(ctx, sellerID, enums.PayoutStatusProcessed, enums.PayoutStatusPending)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payouts")
	}
	return earned - committed, nil
}

func (s *service) Summary(ctx context.Context, actor types.Actor) (Summary, error) {
	if err := requireSeller(actor); err != nil {
		return Summary{}, err
	}
	earned, err := s.repo.SumEarnings(ctx, actor.UserID)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum earnings")
	}
	processed, err := s.repo.SumPayouts(ctx, actor.UserID, enums.PayoutStatusProcessed)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum processed payouts")
	}
	pending, err := s.repo.SumPayouts(ctx, actor.UserID, enums.PayoutStatusPending)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum pending payouts")
	}
	return Summary{
		TotalEarnedCents:    earned,
		PaidOutCents:        processed,
		PendingPayoutsCents: pending,
		AvailableCents:      earned - processed - pending,
	}, nil
}

func (s *service) ListEarnings(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Earning], error) {
	if err := requireSeller(actor); err != nil {
		return pagination.Page[models.Earning]{}, err
	}
	if err := validateCursor(params); err != nil {
		return pagination.Page[models.Earning]{}, err
	}
	page, err := s.repo.ListEarnings(ctx, actor.UserID, params)
	if err != nil {
		return pagination.Page[models.Earning]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list earnings")
	}
	return page, nil
}

func (s *service) ListPayouts(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Payout], error) {
	if err := requireSeller(actor); err != nil {
		return pagination.Page[models.Payout]{}, err
	}
	if err := validateCursor(params); err != nil {
		return pagination.Page[models.Payout]{}, err
	}
	sellerID := actor.UserID
	page, err := s.repo.ListPayouts(ctx, PayoutFilters{SellerID: &sellerID}, params)
	if err != nil {
		return pagination.Page[models.Payout]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return page, nil
}

func (s *service) ListPendingPayouts(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Payout], error) {
	if !actor.IsAdmin() {
		return pagination.Page[models.Payout]{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if err := validateCursor(params); err != nil {
		return pagination.Page[models.Payout]{}, err
	}
	status := enums.PayoutStatusPending
	page, err := s.repo.ListPayouts(ctx, PayoutFilters{Status: &status}, params)
	if err != nil {
		return pagination.Page[models.Payout]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payouts")
	}
	return page, nil
}

// RequestPayout records a pending withdrawal after re-checking the balance
// under the seller lock, so two concurrent requests cannot overdraw.
func (s *service) RequestPayout(ctx context.Context, actor types.Actor, input RequestPayoutInput) (*models.Payout, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero").
			WithDetails(map[string]string{"amount_cents": "must be greater than zero"})
	}
	method := enums.PaymentMethod(strings.ToLower(strings.TrimSpace(input.Method)))
	if !enums.IsPayoutMethod(method) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payout method %q", input.Method)).
			WithDetails(map[string]string{"method": "is not a supported payout method"})
	}

	sellerID := actor.UserID
	var payout *models.Payout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.LockSeller(ctx, sellerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock seller balance")
		}
		available, err := availableBalance(ctx, repo, sellerID)
		if err != nil {
			return err
		}
		if input.AmountCents > available {
			return pkgerrors.InsufficientBalance(available, input.AmountCents)
		}

		payout = &models.Payout{
			ID:            uuid.New(),
			UserID:        sellerID,
			AmountCents:   input.AmountCents,
			Method:        method,
			MethodDetails: input.Details,
			Status:        enums.PayoutStatusPending,
			RequestedAt:   s.now().UTC(),
		}
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
		}
		return s.emit(ctx, tx, payoutEvent(enums.EventPayoutRequested, actor, *payout))
	})
	if err != nil {
		s.logFailure(ctx, "payout request failed", err, sellerID, uuid.Nil)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncPayout(string(enums.PayoutStatusPending))
	}
	return payout, nil
}

// ApprovePayout records the admin decision. Processing settles the seller's
// oldest pending earnings that fit inside the paid amount.
func (s *service) ApprovePayout(ctx context.Context, actor types.Actor, payoutID uuid.UUID, input ApprovePayoutInput) (*models.Payout, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	status, err := enums.ParsePayoutStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if err != nil || !status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be processed or rejected").
			WithDetails(map[string]string{"status": "must be one of processed, rejected"})
	}
	note := trimmedOrNil(input.Note)

	var payout *models.Payout
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindPayout(ctx, payoutID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		now := s.now().UTC()
		ok, err := repo.DecidePayout(ctx, payoutID, PayoutDecision{Status: status, Note: note, DecidedBy: actor.UserID, At: now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide payout")
		}
		if !ok {
			latest, err := repo.FindPayout(ctx, payoutID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout")
			}
			observed := current.Status
			if latest != nil {
				observed = latest.Status
			}
			return pkgerrors.IllegalTransition("payout", string(observed), string(status))
		}

		if status == enums.PayoutStatusProcessed {
			if err := settleEarnings(ctx, repo, current.UserID, current.AmountCents); err != nil {
				return err
			}
			current.ProcessedAt = &now
		}
		current.Status = status
		current.AdminNote = note
		decidedBy := actor.UserID
		current.DecidedBy = &decidedBy
		payout = current

		eventType := enums.EventPayoutRejected
		if status == enums.PayoutStatusProcessed {
			eventType = enums.EventPayoutProcessed
		}
		return s.emit(ctx, tx, payoutEvent(eventType, actor, *payout))
	})
	if err != nil {
		s.logFailure(ctx, "payout decision failed", err, uuid.Nil, payoutID)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncPayout(string(status))
	}
	s.notifier.Notify(ctx, notifications.PayoutDecision(*payout))
	return payout, nil
}

func settleEarnings(ctx context.Context, repo Repository, sellerID uuid.UUID, amount int64) error {
	pending, err := repo.ListPendingEarnings(ctx, sellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending earnings")
	}
	var (
		covered int64
		ids     []uuid.UUID
	)
	for _, earning := range pending {
		if covered+earning.AmountCents > amount {
			break
		}
		covered += earning.AmountCents
		ids = append(ids, earning.ID)
	}
	if _, err := repo.MarkEarningsPaidOut(ctx, ids); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark earnings paid out")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(event.EventType))
	}
	return nil
}

func payoutEvent(eventType enums.OutboxEventType, actor types.Actor, payout models.Payout) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePayout,
		AggregateID:   payout.ID,
		Actor:         outbox.ActorFrom(actor),
		Data: PayoutEvent{
			PayoutID:    payout.ID,
			SellerID:    payout.UserID,
			AmountCents: payout.AmountCents,
			Method:      payout.Method,
			Status:      payout.Status,
			Note:        payout.AdminNote,
		},
	}
}

func (s *service) logFailure(ctx context.Context, msg string, err error, sellerID, payoutID uuid.UUID) {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeDependency {
		return
	}
	fields := map[string]any{}
	if sellerID != uuid.Nil {
		fields["seller_id"] = sellerID.String()
	}
	if payoutID != uuid.Nil {
		fields["payout_id"] = payoutID.String()
	}
	s.logg.Error(s.logg.WithFields(ctx, fields), msg, err)
}

func requireSeller(actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.Role != enums.ActorRoleSeller && !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "seller role required")
	}
	return nil
}

func validateCursor(params pagination.Params) error {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
