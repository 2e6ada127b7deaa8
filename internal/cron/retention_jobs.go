package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
)

const (
	notificationRetentionDays = 30
	outboxRetentionDays       = 30
	outboxMaxAttempts         = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// purgeFunc deletes rows older than cutoff inside tx and reports how many went.
type purgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// retentionJob is a cutoff-based delete. Each table supplies its own purge.
type retentionJob struct {
	name      string
	logg      *logger.Logger
	db        txRunner
	purge     purgeFunc
	retention int
	fields    map[string]any
	now       func() time.Time
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.purge(ctx, tx, cutoff)
		deleted = rows
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", j.name, err)
	}

	fields := map[string]any{"cutoff": cutoff, "retention_days": j.retention, "deleted": deleted}
	for k, v := range j.fields {
		fields[k] = v
	}
	j.logg.Debug(j.logg.WithFields(ctx, fields), j.name+" complete")
	return deleted, nil
}

func newRetentionJob(name string, logg *logger.Logger, db txRunner, retention, fallback int) (*retentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if retention <= 0 {
		retention = fallback
	}
	return &retentionJob{name: name, logg: logg, db: db, retention: retention, now: time.Now}, nil
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationsCleanupRepo
	// RetentionDays defaults to 30.
	RetentionDays int
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob deletes inbox rows past the retention window, read or not.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	job, err := newRetentionJob("notification-cleanup", params.Logger, params.DB, params.RetentionDays, notificationRetentionDays)
	if err != nil {
		return nil, err
	}
	job.purge = params.Repository.DeleteOlderThan
	return job, nil
}

type OutboxRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    outboxRetentionRepo
	RetentionDays int
	// MaxAttempts matches the publisher's give-up threshold; dead rows past it are purged too.
	MaxAttempts int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, maxAttempts int) (int64, error)
}

// NewOutboxRetentionJob removes relayed events and exhausted ones once they age out.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	job, err := newRetentionJob("outbox-retention", params.Logger, params.DB, params.RetentionDays, outboxRetentionDays)
	if err != nil {
		return nil, err
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = outboxMaxAttempts
	}
	repo := params.Repository
	job.purge = func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
		return repo.DeletePublishedBefore(ctx, tx, cutoff, maxAttempts)
	}
	job.fields = map[string]any{"max_attempts": maxAttempts}
	return job, nil
}
