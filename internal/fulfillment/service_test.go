package fulfillment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
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

type countingMetrics struct {
	counts map[string]int
}

func (c *countingMetrics) IncTransition(to string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[to]++
}

type fixture struct {
	client   *db.Client
	svc      Service
	notifier *recordingNotifier
	metrics  *countingMetrics
	orders   orders.Repository
	buyer    uuid.UUID
	seller   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	orderRepo := orders.NewRepository(client.DB())
	f := &fixture{
		client:   client,
		notifier: &recordingNotifier{},
		metrics:  &countingMetrics{},
		orders:   orderRepo,
		buyer:    uuid.New(),
		seller:   uuid.New(),
	}
	svc, err := NewService(ServiceParams{
		Orders:   orderRepo,
		History:  NewHistoryRepository(client.DB()),
		Tx:       client,
		Outbox:   outbox.NewService(outbox.NewRepository(client.DB()), logg),
		Notifier: f.notifier,
		Metrics:  f.metrics,
		Logger:   logg,
		Config:   config.FulfillmentConfig{MinRejectionReasonLength: 10},
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedLine(t *testing.T, class enums.FulfillmentClass) models.OrderLine {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	order := &models.Order{
		ID:                  uuid.New(),
		CheckoutGroupID:     uuid.New(),
		BuyerID:             f.buyer,
		FulfillmentClass:    class,
		SubtotalCents:       100,
		TotalCents:          100,
		PlatformFeeCents:    12,
		SellerEarningsCents: 88,
		PaymentMethod:       enums.PaymentMethodCard,
		Status:              enums.SettlementStatusPaid,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	require.NoError(t, f.orders.CreateOrder(ctx, order))
	productID := uuid.New()
	line := models.OrderLine{
		ID:                 uuid.New(),
		OrderID:            order.ID,
		ProductID:          &productID,
		SellerID:           f.seller,
		Title:              "Vase",
		FulfillmentClass:   class,
		UnitPriceCents:     100,
		Quantity:           1,
		LineTotalCents:     100,
		PlatformFeeCents:   12,
		SellerEarningCents: 88,
		FulfillmentStatus:  enums.FulfillmentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.orders.CreateLines(ctx, []models.OrderLine{line}))
	return line
}

func (f *fixture) sellerActor() types.Actor {
	return types.Actor{UserID: f.seller, Role: enums.ActorRoleSeller}
}

func countOutbox(t *testing.T, conn *gorm.DB, aggregateID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", aggregateID).Count(&n).Error)
	return n
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()
	seller := f.sellerActor()

	got, err := f.svc.Accept(ctx, seller, line.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentStatusAccepted, got.FulfillmentStatus)
	require.NotNil(t, got.AcceptedAt)

	_, err = f.svc.Prepare(ctx, seller, line.ID)
	require.NoError(t, err)

	got, err = f.svc.Ship(ctx, seller, line.ID, "  EG123456  ")
	require.NoError(t, err)
	require.NotNil(t, got.TrackingNumber)
	assert.Equal(t, "EG123456", *got.TrackingNumber)

	_, err = f.svc.MarkDelivered(ctx, seller, line.ID)
	require.NoError(t, err)

	stored, err := f.orders.FindLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentStatusDelivered, stored.FulfillmentStatus)
	assert.NotNil(t, stored.ShippedAt)
	assert.NotNil(t, stored.DeliveredAt)

	history, err := f.svc.History(ctx, types.Actor{UserID: f.buyer, Role: enums.ActorRoleBuyer}, line.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, enums.FulfillmentStatusPending, history[0].FromStatus)
	assert.Equal(t, enums.FulfillmentStatusDelivered, history[3].ToStatus)
	for i, row := range history {
		assert.Equal(t, i+1, row.Sequence)
	}

	assert.Equal(t, int64(4), countOutbox(t, f.client.DB(), line.ID))
	assert.Len(t, f.notifier.messages, 4)
	assert.Equal(t, f.buyer, f.notifier.messages[0].UserID)
	assert.Equal(t, 1, f.metrics.counts[string(enums.FulfillmentStatusShipped)])

	_, err = f.svc.Cancel(ctx, seller, line.ID, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "terminal line should not move: %v", err)
}

func TestIllegalTransitionsLeaveNoTrace(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()

	_, err := f.svc.Ship(ctx, f.sellerActor(), line.ID, "TRACK")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Contains(t, err.Error(), "pending")
	assert.Contains(t, err.Error(), "shipped")

	_, err = f.svc.Accept(ctx, f.sellerActor(), line.ID)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, f.sellerActor(), line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	history, err := f.svc.History(ctx, f.sellerActor(), line.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, int64(1), countOutbox(t, f.client.DB(), line.ID))
}

func TestShipRequiresPreparing(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, f.sellerActor(), line.ID)
	require.NoError(t, err)
	_, err = f.svc.Ship(ctx, f.sellerActor(), line.ID, "TRACK-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Contains(t, err.Error(), "accepted")

	_, err = f.svc.Prepare(ctx, f.sellerActor(), line.ID)
	require.NoError(t, err)
	_, err = f.svc.Ship(ctx, f.sellerActor(), line.ID, "TRACK-1")
	require.NoError(t, err)
}

func TestDigitalLinesHaveNoLifecycle(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassDigital)

	_, err := f.svc.Accept(context.Background(), f.sellerActor(), line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}, line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Accept(ctx, types.Actor{UserID: f.buyer, Role: enums.ActorRoleBuyer}, line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Accept(ctx, types.Actor{}, line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Accept(ctx, f.sellerActor(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	admin := types.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
	got, err := f.svc.Cancel(ctx, admin, line.ID, "buyer asked")
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentStatusCancelled, got.FulfillmentStatus)

	_, err = f.svc.History(ctx, types.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}, line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestRejectAndShipValidation(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()

	_, err := f.svc.Reject(ctx, f.sellerActor(), line.ID, "  damaged in storage ")
	require.NoError(t, err)

	other := f.seedLine(t, enums.FulfillmentClassPhysical)
	_, err = f.svc.Reject(ctx, f.sellerActor(), other.ID, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Ship(ctx, f.sellerActor(), other.ID, "   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stored, err := f.orders.FindLine(ctx, line.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "damaged in storage", *stored.RejectionReason)
	assert.NotNil(t, stored.RejectedAt)
}

type racingOrders struct {
	orders.Repository
	line     *models.OrderLine
	observed enums.FulfillmentStatus
}

func (r *racingOrders) WithTx(tx *gorm.DB) orders.Repository { return r }

func (r *racingOrders) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	clone := *r.line
	return &clone, nil
}

func (r *racingOrders) TransitionLine(ctx context.Context, lineID uuid.UUID, from enums.FulfillmentStatus, updates map[string]any) (bool, error) {
	r.line.FulfillmentStatus = r.observed
	return false, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type noopHistory struct{ HistoryRepository }

func (n noopHistory) WithTx(tx *gorm.DB) HistoryRepository { return n }

type noopOutbox struct{}

func (noopOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error { return nil }

func TestLostRaceReportsObservedState(t *testing.T) {
	seller := uuid.New()
	repo := &racingOrders{
		line: &models.OrderLine{
			ID:                uuid.New(),
			SellerID:          seller,
			FulfillmentClass:  enums.FulfillmentClassPhysical,
			FulfillmentStatus: enums.FulfillmentStatusPending,
		},
		observed: enums.FulfillmentStatusCancelled,
	}
	notifier := &recordingNotifier{}
	svc, err := NewService(ServiceParams{
		Orders:   repo,
		History:  noopHistory{},
		Tx:       passthroughTx{},
		Outbox:   noopOutbox{},
		Notifier: notifier,
		Logger:   logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), types.Actor{UserID: seller, Role: enums.ActorRoleSeller}, repo.line.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Contains(t, err.Error(), "cancelled")
	assert.Empty(t, notifier.messages)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(enums.FulfillmentStatusPending, enums.FulfillmentStatusAccepted))
	assert.True(t, CanTransition(enums.FulfillmentStatusAccepted, enums.FulfillmentStatusRejected))
	assert.True(t, CanTransition(enums.FulfillmentStatusPreparing, enums.FulfillmentStatusCancelled))
	assert.False(t, CanTransition(enums.FulfillmentStatusAccepted, enums.FulfillmentStatusShipped))
	assert.False(t, CanTransition(enums.FulfillmentStatusPreparing, enums.FulfillmentStatusRejected))
	assert.False(t, CanTransition(enums.FulfillmentStatusShipped, enums.FulfillmentStatusCancelled))
	assert.False(t, CanTransition(enums.FulfillmentStatusDelivered, enums.FulfillmentStatusCancelled))
	assert.False(t, CanTransition(enums.FulfillmentStatusPending, enums.FulfillmentStatusPending))
}

func TestHistoryOrdersBySequenceOnTimestampTies(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, enums.FulfillmentClassPhysical)
	ctx := context.Background()
	repo := NewHistoryRepository(f.client.DB())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	steps := []struct {
		id       uuid.UUID
		from, to enums.FulfillmentStatus
	}{
		{uuid.MustParse("ffffffff-ffff-4fff-bfff-ffffffffffff"), enums.FulfillmentStatusPending, enums.FulfillmentStatusAccepted},
		{uuid.MustParse("00000000-0000-4000-8000-000000000001"), enums.FulfillmentStatusAccepted, enums.FulfillmentStatusPreparing},
	}
	for _, step := range steps {
		require.NoError(t, repo.Append(ctx, &models.StatusHistory{
			ID:          step.id,
			OrderLineID: line.ID,
			FromStatus:  step.from,
			ToStatus:    step.to,
			ActorID:     f.seller,
			ActorRole:   enums.ActorRoleSeller,
			CreatedAt:   at,
		}))
	}

	rows, err := repo.ListByLine(ctx, line.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Sequence)
	assert.Equal(t, enums.FulfillmentStatusAccepted, rows[0].ToStatus)
	assert.Equal(t, 2, rows[1].Sequence)
	assert.Equal(t, enums.FulfillmentStatusPreparing, rows[1].ToStatus)

	dup := &models.StatusHistory{
		ID:          uuid.New(),
		OrderLineID: line.ID,
		Sequence:    1,
		FromStatus:  enums.FulfillmentStatusPreparing,
		ToStatus:    enums.FulfillmentStatusShipped,
		ActorID:     f.seller,
		ActorRole:   enums.ActorRoleSeller,
		CreatedAt:   at,
	}
	assert.Error(t, f.client.DB().Create(dup).Error, "sequence must be unique per line")
}
