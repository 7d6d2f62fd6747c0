package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	defaultOutboxRetention = 30 * 24 * time.Hour
	defaultListRetention   = 180 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type finalizedListPurger interface {
	DeleteFinalizedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// purgeJob deletes rows older than now-window through purge. Both retention
// jobs are this shape; they differ only in what purge removes.
type purgeJob struct {
	name    string
	window  time.Duration
	purge   func(ctx context.Context, cutoff time.Time) (int64, error)
	logg    *logger.Logger
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *purgeJob) Name() string { return j.name }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	deleted, err := j.purge(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.metrics.AddPurged(j.name, deleted)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"job":     j.name,
		"cutoff":  cutoff,
		"deleted": deleted,
	}), "cron.purge_complete")
	return nil
}

type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository outboxRetentionRepo
	Metrics    *metrics.CronJobMetrics
	Retention  time.Duration
}

// NewOutboxRetentionJob removes published outbox rows past the retention
// window. Unpublished rows are never candidates.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("outbox retention: logger required")
	case params.DB == nil:
		return nil, errors.New("outbox retention: db runner required")
	case params.Repository == nil:
		return nil, errors.New("outbox retention: repository required")
	}
	window := params.Retention
	if window <= 0 {
		window = defaultOutboxRetention
	}
	repo, db := params.Repository, params.DB
	return &purgeJob{
		name:   "outbox-retention",
		window: window,
		purge: func(ctx context.Context, cutoff time.Time) (n int64, err error) {
			err = db.WithTx(ctx, func(tx *gorm.DB) error {
				n, err = repo.DeletePublishedBefore(ctx, tx, cutoff)
				return err
			})
			return n, err
		},
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type ShoppingListRetentionJobParams struct {
	Logger        *logger.Logger
	Lists         finalizedListPurger
	Metrics       *metrics.CronJobMetrics
	RetentionDays int
}

// NewShoppingListRetentionJob removes finalized lists, with their entries,
// once they age past RetentionDays. Active lists are never candidates.
func NewShoppingListRetentionJob(params ShoppingListRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("shopping list retention: logger required")
	case params.Lists == nil:
		return nil, errors.New("shopping list retention: store required")
	}
	window := defaultListRetention
	if params.RetentionDays > 0 {
		window = time.Duration(params.RetentionDays) * 24 * time.Hour
	}
	return &purgeJob{
		name:    "shopping-list-retention",
		window:  window,
		purge:   params.Lists.DeleteFinalizedBefore,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}
