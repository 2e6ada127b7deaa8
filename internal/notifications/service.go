package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
)

// Notifier writes one inbox entry. Failures are logged and never surface to the caller.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Service defines notification list/read operations.
type Service interface {
	Notifier
	List(ctx context.Context, params ListParams) (pagination.Page[models.Notification], error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Message is a notification about to be written.
type Message struct {
	UserID  uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Link    *string
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Page       pagination.Params
	UnreadOnly bool
}

// NewService wires notifications dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Notify(ctx context.Context, msg Message) {
	if msg.UserID == uuid.Nil || !msg.Type.IsValid() {
		s.logg.Warn(s.logg.WithField(ctx, "notification_type", string(msg.Type)), "dropping malformed notification")
		return
	}
	row := &models.Notification{
		ID:        uuid.New(),
		UserID:    msg.UserID,
		Type:      msg.Type,
		Title:     msg.Title,
		Message:   msg.Message,
		Link:      msg.Link,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"notification_type": string(msg.Type),
			"recipient_id":      msg.UserID.String(),
		})
		s.logg.Error(logCtx, "failed to write notification", err)
	}
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.Page[models.Notification], error) {
	if params.UserID == uuid.Nil {
		return pagination.Page[models.Notification]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := pagination.ParseCursor(params.Page.Cursor); err != nil {
		return pagination.Page[models.Notification]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	page, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     params.UserID,
		Page:       params.Page,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return pagination.Page[models.Notification]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return page, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
