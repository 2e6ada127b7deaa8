package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	orderID := uuid.New()
	actorID := uuid.New()

	err := svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         &ActorRef{UserID: actorID, Role: "admin"},
		Data:          map[string]any{"order_id": orderID.String()},
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventOrderPaid, rows[0].EventType)
	assert.Equal(t, orderID, rows[0].AggregateID)

	env, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, payloadVersion, env.Version)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Actor)
	assert.Equal(t, actorID, env.Actor.UserID)
	assert.JSONEq(t, `{"order_id":"`+orderID.String()+`"}`, string(env.Data))
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderPaid})
	require.Error(t, err)
}

func TestEmitRejectsUnknownEventType(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	err := svc.Emit(context.Background(), conn, DomainEvent{EventType: "order.teleported"})
	require.Error(t, err)
}

func TestEmitValidatesAggregate(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)

	err := svc.Emit(context.Background(), conn, DomainEvent{EventType: enums.EventOrderPaid, AggregateType: "basket", AggregateID: uuid.New()})
	require.Error(t, err)
	err = svc.Emit(context.Background(), conn, DomainEvent{EventType: enums.EventOrderPaid, AggregateType: enums.AggregateOrder})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmitUsesEventIDAsRowID(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	pinned := uuid.New()
	svc.newID = func() uuid.UUID { return pinned }
	occurred := time.Date(2026, 5, 4, 10, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

	require.NoError(t, svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventPayoutProcessed,
		AggregateType: enums.AggregatePayout,
		AggregateID:   uuid.New(),
		OccurredAt:    occurred,
	}))

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row, "id = ?", pinned).Error)
	env, err := DecodeEnvelope(row.Payload)
	require.NoError(t, err)
	assert.Equal(t, pinned.String(), env.EventID)
	assert.True(t, env.OccurredAt.Equal(occurred))
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.JSONEq(t, "null", string(env.Data))
}

func TestEmitIfNotExistsSkipsDuplicates(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	event := DomainEvent{
		EventType:     enums.EventOrderPaymentReminder,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	}

	created, err := svc.EmitIfNotExists(context.Background(), conn, event)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EmitIfNotExists(context.Background(), conn, event)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(ctx, conn, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateCheckoutGroup,
			AggregateID:   uuid.New(),
			OccurredAt:    time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, !rows[0].CreatedAt.After(rows[1].CreatedAt))

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New("broker down")))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New("broker down")))

	remaining, err := repo.FetchUnpublishedForPublish(conn, 10, 2)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, rows[2].ID, remaining[0].ID)

	deleted, err := repo.DeletePublishedBefore(ctx, nil, time.Now().UTC().Add(time.Hour), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var left []models.OutboxEvent
	require.NoError(t, conn.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, rows[2].ID, left[0].ID)
}

func TestRepositoryMarkExhausted(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	require.NoError(t, NewService(repo, nil).Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventPayoutRequested,
		AggregateType: enums.AggregatePayout,
		AggregateID:   uuid.New(),
	}))
	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, repo.MarkExhaustedTx(conn, rows[0].ID, errors.New("bad envelope"), 5))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var stored models.OutboxEvent
	require.NoError(t, conn.First(&stored).Error)
	assert.Equal(t, 5, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "bad envelope", *stored.LastError)
}
