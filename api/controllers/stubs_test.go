package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/api/middleware"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout"
	"github.com/angelmondragon/craftmarket-backend/internal/ledger"
	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newRequest(method, target, body string, actor *types.Actor) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	rctx, _ := req.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func buyer() *types.Actor {
	return &types.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}
}

func seller() *types.Actor {
	return &types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}
}

func admin() *types.Actor {
	return &types.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}

type stubCheckoutService struct {
	quoteFn   func(ctx context.Context, input checkout.QuoteInput) (*checkout.QuoteResult, error)
	executeFn func(ctx context.Context, input checkout.CheckoutInput) (*checkout.CheckoutResult, error)
}

func (s *stubCheckoutService) Quote(ctx context.Context, input checkout.QuoteInput) (*checkout.QuoteResult, error) {
	return s.quoteFn(ctx, input)
}

func (s *stubCheckoutService) Execute(ctx context.Context, input checkout.CheckoutInput) (*checkout.CheckoutResult, error) {
	return s.executeFn(ctx, input)
}

type stubFulfillmentService struct {
	lastCall   string
	lastReason string
	err        error
	history    []models.StatusHistory
}

func (s *stubFulfillmentService) line(call string, lineID uuid.UUID, status enums.FulfillmentStatus) (*models.OrderLine, error) {
	s.lastCall = call
	if s.err != nil {
		return nil, s.err
	}
	return &models.OrderLine{ID: lineID, FulfillmentClass: enums.FulfillmentClassPhysical, FulfillmentStatus: status}, nil
}

func (s *stubFulfillmentService) Accept(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.line("accept", lineID, enums.FulfillmentStatusAccepted)
}

func (s *stubFulfillmentService) Reject(ctx context.Context, actor types.Actor, lineID uuid.UUID, reason string) (*models.OrderLine, error) {
	s.lastReason = reason
	return s.line("reject", lineID, enums.FulfillmentStatusRejected)
}

func (s *stubFulfillmentService) Prepare(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.line("prepare", lineID, enums.FulfillmentStatusPreparing)
}

func (s *stubFulfillmentService) Ship(ctx context.Context, actor types.Actor, lineID uuid.UUID, tracking string) (*models.OrderLine, error) {
	s.lastReason = tracking
	return s.line("ship", lineID, enums.FulfillmentStatusShipped)
}

func (s *stubFulfillmentService) MarkDelivered(ctx context.Context, actor types.Actor, lineID uuid.UUID) (*models.OrderLine, error) {
	return s.line("deliver", lineID, enums.FulfillmentStatusDelivered)
}

func (s *stubFulfillmentService) Cancel(ctx context.Context, actor types.Actor, lineID uuid.UUID, note string) (*models.OrderLine, error) {
	s.lastReason = note
	return s.line("cancel", lineID, enums.FulfillmentStatusCancelled)
}

func (s *stubFulfillmentService) History(ctx context.Context, actor types.Actor, lineID uuid.UUID) ([]models.StatusHistory, error) {
	s.lastCall = "history"
	return s.history, s.err
}

type stubLedgerService struct {
	ledger.Service
	summary      ledger.Summary
	requestFn    func(ctx context.Context, actor types.Actor, input ledger.RequestPayoutInput) (*models.Payout, error)
	approveFn    func(ctx context.Context, actor types.Actor, id uuid.UUID, input ledger.ApprovePayoutInput) (*models.Payout, error)
	pendingPages pagination.Page[models.Payout]
	lastParams   pagination.Params
}

func (s *stubLedgerService) Summary(ctx context.Context, actor types.Actor) (ledger.Summary, error) {
	return s.summary, nil
}

func (s *stubLedgerService) RequestPayout(ctx context.Context, actor types.Actor, input ledger.RequestPayoutInput) (*models.Payout, error) {
	return s.requestFn(ctx, actor, input)
}

func (s *stubLedgerService) ApprovePayout(ctx context.Context, actor types.Actor, id uuid.UUID, input ledger.ApprovePayoutInput) (*models.Payout, error) {
	return s.approveFn(ctx, actor, id, input)
}

func (s *stubLedgerService) ListPendingPayouts(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Payout], error) {
	s.lastParams = params
	return s.pendingPages, nil
}

type stubNotificationsService struct {
	notifications.Notifier
	listFn        func(ctx context.Context, params notifications.ListParams) (pagination.Page[models.Notification], error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (pagination.Page[models.Notification], error) {
	return s.listFn(ctx, params)
}

func (s *stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.markReadFn(ctx, userID, notificationID)
}

func (s *stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}
