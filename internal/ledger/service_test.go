package ledger

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/pkg/db"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notifications.Message
}

func (r *recordingNotifier) Notify(ctx context.Context, msg notifications.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

type ledgerFixture struct {
	client   *db.Client
	repo     Repository
	svc      Service
	notifier *recordingNotifier
	seller   types.Actor
	admin    types.Actor
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	client := dbtest.Client(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	repo := NewRepository(client.DB())
	notifier := &recordingNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       client,
		Outbox:   outbox.NewService(outbox.NewRepository(client.DB()), logg),
		Notifier: notifier,
		Logger:   logg,
	})
	require.NoError(t, err)
	return &ledgerFixture{
		client:   client,
		repo:     repo,
		svc:      svc,
		notifier: notifier,
		seller:   types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller},
		admin:    types.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
	}
}

func (f *ledgerFixture) earn(t *testing.T, amounts ...int64) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	var rows []models.Earning
	for i, amount := range amounts {
		rows = append(rows, earning(f.seller.UserID, uuid.New(), amount, base.Add(time.Duration(i)*time.Second)))
	}
	_, err := f.repo.InsertEarnings(context.Background(), rows)
	require.NoError(t, err)
}

func TestRequestPayoutChecksBalance(t *testing.T) {
	f := newLedgerFixture(t)
	f.earn(t, 206, 127)
	ctx := context.Background()

	payout, err := f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: 300, Method: " InstaPay "})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatusPending, payout.Status)
	assert.Equal(t, enums.PaymentMethodInstapay, payout.Method)

	available, err := f.svc.AvailableBalance(ctx, f.seller.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(33), available)

	_, err = f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: 34, Method: "instapay"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance))
	details, ok := pkgerrors.As(err).Details().(pkgerrors.BalanceDetails)
	require.True(t, ok)
	assert.Equal(t, int64(33), details.AvailableCents)
	assert.Equal(t, int64(34), details.RequestedCents)

	var events int64
	require.NoError(t, f.client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventPayoutRequested).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestRequestPayoutValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	cases := []struct {
		name  string
		actor types.Actor
		input RequestPayoutInput
		code  pkgerrors.Code
	}{
		{"anonymous", types.Actor{}, RequestPayoutInput{AmountCents: 1, Method: "instapay"}, pkgerrors.CodeUnauthorized},
		{"buyer", types.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}, RequestPayoutInput{AmountCents: 1, Method: "instapay"}, pkgerrors.CodeForbidden},
		{"zero amount", f.seller, RequestPayoutInput{Method: "instapay"}, pkgerrors.CodeValidation},
		{"card", f.seller, RequestPayoutInput{AmountCents: 1, Method: "card"}, pkgerrors.CodeValidation},
		{"unknown", f.seller, RequestPayoutInput{AmountCents: 1, Method: "paypal"}, pkgerrors.CodeValidation},
		{"empty balance", f.seller, RequestPayoutInput{AmountCents: 1, Method: "vodafone_cash"}, pkgerrors.CodeInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RequestPayout(ctx, tc.actor, tc.input)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "expected %s, got %v", tc.code, err)
		})
	}
}

func TestConcurrentPayoutsNeverOverdraw(t *testing.T) {
	cases := []struct {
		name      string
		earned    int64
		requested int64
		remaining int64
	}{
		{"partial balance", 100, 80, 20},
		{"exact balance", 100, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			f.earn(t, tc.earned)
			ctx := context.Background()

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				declined  int
			)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: tc.requested, Method: "bank_transfer"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance):
						declined++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, 1, declined)
			available, err := f.svc.AvailableBalance(ctx, f.seller.UserID)
			require.NoError(t, err)
			assert.Equal(t, tc.remaining, available)
		})
	}
}

func TestApprovePayoutSettlesOldestEarnings(t *testing.T) {
	f := newLedgerFixture(t)
	f.earn(t, 50, 70, 30)
	ctx := context.Background()

	payout, err := f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: 120, Method: "instapay"})
	require.NoError(t, err)

	_, err = f.svc.ApprovePayout(ctx, f.seller, payout.ID, ApprovePayoutInput{Status: "processed"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	note := "  sent  "
	decided, err := f.svc.ApprovePayout(ctx, f.admin, payout.ID, ApprovePayoutInput{Status: "processed", Note: &note})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatusProcessed, decided.Status)
	require.NotNil(t, decided.AdminNote)
	assert.Equal(t, "sent", *decided.AdminNote)
	assert.NotNil(t, decided.ProcessedAt)

	pending, err := f.repo.ListPendingEarnings(ctx, f.seller.UserID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(30), pending[0].AmountCents)

	summary, err := f.svc.Summary(ctx, f.seller)
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalEarnedCents: 150, PaidOutCents: 120, AvailableCents: 30}, summary)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, f.seller.UserID, f.notifier.messages[0].UserID)
	assert.Equal(t, enums.NotificationTypePayoutUpdate, f.notifier.messages[0].Type)

	_, err = f.svc.ApprovePayout(ctx, f.admin, payout.ID, ApprovePayoutInput{Status: "rejected"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestApprovePayoutRejectReleasesBalance(t *testing.T) {
	f := newLedgerFixture(t)
	f.earn(t, 90)
	ctx := context.Background()

	payout, err := f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: 90, Method: "orange_cash"})
	require.NoError(t, err)
	_, err = f.svc.ApprovePayout(ctx, f.admin, payout.ID, ApprovePayoutInput{Status: "rejected"})
	require.NoError(t, err)

	available, err := f.svc.AvailableBalance(ctx, f.seller.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), available)

	_, err = f.svc.ApprovePayout(ctx, f.admin, uuid.New(), ApprovePayoutInput{Status: "processed"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.ApprovePayout(ctx, f.admin, payout.ID, ApprovePayoutInput{Status: "pending"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPayoutsScopes(t *testing.T) {
	f := newLedgerFixture(t)
	f.earn(t, 500)
	ctx := context.Background()
	_, err := f.svc.RequestPayout(ctx, f.seller, RequestPayoutInput{AmountCents: 10, Method: "instapay"})
	require.NoError(t, err)

	own, err := f.svc.ListPayouts(ctx, f.seller, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, own.Items, 1)

	other, err := f.svc.ListPayouts(ctx, types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	_, err = f.svc.ListPendingPayouts(ctx, f.seller, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	queue, err := f.svc.ListPendingPayouts(ctx, f.admin, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, queue.Items, 1)

	_, err = f.svc.ListEarnings(ctx, f.seller, pagination.Params{Cursor: "garbage!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
