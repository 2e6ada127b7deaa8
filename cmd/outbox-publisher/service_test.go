package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			newEvent(t, enums.EventOrderCreated, enums.AggregateCheckoutGroup, 0),
			newEvent(t, enums.EventOrderPaid, enums.AggregateOrder, 0),
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	relay := &fakeMetrics{}
	svc := newTestService(t, repo, pub, relay, 5)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("expected first event marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("expected second event published, got %v", repo.published)
	}
	if len(repo.exhausted) != 0 {
		t.Fatalf("transient failure should stay retryable")
	}
	if relay.published != 1 || relay.failed != 1 {
		t.Fatalf("unexpected metrics %+v", relay)
	}
}

func TestServicePublishesEnvelopeAttributes(t *testing.T) {
	event := newEvent(t, enums.EventPayoutRequested, enums.AggregatePayout, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	svc := newTestService(t, repo, pub, nil, 5)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if !bytes.Equal(msg.Data, event.Payload) {
		t.Fatalf("message data should be the stored envelope")
	}
	if msg.Attributes["event_type"] != string(enums.EventPayoutRequested) {
		t.Fatalf("unexpected event_type %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_type"] != string(enums.AggregatePayout) {
		t.Fatalf("unexpected aggregate_type %q", msg.Attributes["aggregate_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id %q", msg.Attributes["aggregate_id"])
	}
	if msg.Attributes["event_id"] == "" {
		t.Fatal("expected event_id attribute")
	}
}

func TestServiceExhaustsUnpublishableEvents(t *testing.T) {
	bad := newEvent(t, enums.EventOrderPaid, enums.AggregateOrder, 0)
	bad.Payload = json.RawMessage(`"not an envelope"`)
	unknown := newEvent(t, enums.OutboxEventType("order.teleported"), enums.AggregateOrder, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{bad, unknown}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub, nil, 5)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("unpublishable events must not reach pubsub")
	}
	if len(repo.exhausted) != 2 {
		t.Fatalf("expected both events exhausted, got %v", repo.exhausted)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("unexpected retry marks %v", repo.failed)
	}
}

func TestServiceExhaustsOnFinalAttempt(t *testing.T) {
	event := newEvent(t, enums.EventOrderLineStateChanged, enums.AggregateOrderLine, 4)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{err: errors.New("deadline exceeded")}}}
	svc := newTestService(t, repo, pub, nil, 5)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(repo.exhausted) != 1 || repo.exhausted[0] != event.ID {
		t.Fatalf("expected event exhausted, got %v", repo.exhausted)
	}
	if repo.lastMaxAttempts != 5 {
		t.Fatalf("expected max attempts 5, got %d", repo.lastMaxAttempts)
	}
}

func TestServiceProcessBatchEmpty(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, &fakePublisher{}, nil, 5)
	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("empty batch should not count as processed")
	}
}

func TestServiceProcessBatchAbortsOnBookkeepingError(t *testing.T) {
	repo := &fakeRepo{
		events:     []models.OutboxEvent{newEvent(t, enums.EventOrderPaid, enums.AggregateOrder, 0)},
		publishErr: errors.New("db gone"),
	}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	svc := newTestService(t, repo, pub, nil, 5)

	if _, err := svc.processBatch(context.Background()); err == nil {
		t.Fatal("expected error when marking published fails")
	}
}

func TestNewServiceDefaults(t *testing.T) {
	cfg := &config.Config{}
	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     testLogger(),
		DB:         fakeDB{},
		PubSub:     fakePubSub{},
		Repository: &fakeRepo{},
		Publisher:  &fakePublisher{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.batchSize != defaultBatchSize || svc.maxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected defaults batch=%d attempts=%d", svc.batchSize, svc.maxAttempts)
	}
	if svc.pollInterval != defaultPollMs*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", svc.pollInterval)
	}

	if _, err := NewService(ServiceParams{Config: cfg, Logger: testLogger(), DB: fakeDB{}, PubSub: fakePubSub{}, Repository: &fakeRepo{}}); err == nil {
		t.Fatal("expected error without a domain publisher")
	}
}

func TestNextBackoff(t *testing.T) {
	base := 500 * time.Millisecond
	if got := nextBackoff(0, base, maxBackoff); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := nextBackoff(8*time.Second, base, maxBackoff); got != maxBackoff {
		t.Fatalf("expected cap, got %v", got)
	}
	if got := withJitter(time.Second); got < time.Second || got >= time.Second+jitterWindow {
		t.Fatalf("jitter out of range: %v", got)
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher, relay *fakeMetrics, maxAttempts int) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.MaxAttempts = maxAttempts
	cfg.PubSub.DomainTopic = "domain-events"
	params := ServiceParams{
		Config:     cfg,
		Logger:     testLogger(),
		DB:         fakeDB{},
		PubSub:     fakePubSub{},
		Repository: repo,
		Publisher:  pub,
	}
	if relay != nil {
		params.Metrics = relay
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newEvent(t *testing.T, eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, attempts int) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   uuid.New(),
		Payload:       raw,
		AttemptCount:  attempts,
		CreatedAt:     time.Now().UTC(),
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard})
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error            { return nil }
func (fakePubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

type fakeRepo struct {
	events          []models.OutboxEvent
	published       []uuid.UUID
	failed          []uuid.UUID
	exhausted       []uuid.UUID
	lastMaxAttempts int
	publishErr      error
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkExhaustedTx(tx *gorm.DB, id uuid.UUID, err error, maxAttempts int) error {
	f.exhausted = append(f.exhausted, id)
	f.lastMaxAttempts = maxAttempts
	return nil
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "msg-id", nil
}

type fakeMetrics struct {
	published int
	failed    int
}

func (f *fakeMetrics) IncPublished(string) { f.published++ }
func (f *fakeMetrics) IncFailed(string)    { f.failed++ }
