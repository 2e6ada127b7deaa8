package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
)

func TestRepositoryReadLifecycle(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		row := &models.Notification{
			ID:        uuid.New(),
			UserID:    user,
			Type:      enums.NotificationTypeOrderPlaced,
			Title:     "Order received",
			Message:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, row))
		ids = append(ids, row.ID)
	}

	mark, err := repo.MarkRead(ctx, user, ids[0], base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, user, ids[0], base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, uuid.New(), ids[1], base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, mark.Found)

	unread, err := repo.List(ctx, listNotificationsParams{UserID: user, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread.Items, 2)
	assert.Equal(t, ids[2], unread.Items[0].ID)

	page, err := repo.List(ctx, listNotificationsParams{UserID: user, Page: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)

	count, err := repo.MarkAllRead(ctx, user, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := repo.DeleteOlderThan(ctx, nil, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
