package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/smartlist-backend/pkg/config"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox/registry"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID, at time.Time) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, cause error, at time.Time) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	DLQRepository    dlqRepository
	Metrics          *metrics.OutboxMetrics
	PublisherFactory publisherFactory
	Now              func() time.Time
}

// Service drains outbox_events into Pub/Sub. A batch is claimed and settled
// in one transaction, so every row ends the batch published, marked failed
// or dead-lettered.
type Service struct {
	logg     *logger.Logger
	db       dbClient
	pubsub   pubSubClient
	repo     outboxRepository
	registry registryResolver
	dlq      dlqRepository
	metrics  *metrics.OutboxMetrics

	newPublisher publisherFactory
	publishers   map[string]publisher

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	jitter       *rand.Rand
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	var missing []string
	for name, ok := range map[string]bool{
		"config":          params.Config != nil,
		"logger":          params.Logger != nil,
		"database client": params.DB != nil,
		"pubsub client":   params.PubSub != nil,
		"repository":      params.Repository != nil,
		"event registry":  params.Registry != nil,
		"dlq repository":  params.DLQRepository != nil,
	} {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("outbox publisher missing dependencies: %v", missing)
	}

	cfg := params.Config.Outbox
	svc := &Service{
		logg:         params.Logger,
		db:           params.DB,
		pubsub:       params.PubSub,
		repo:         params.Repository,
		registry:     params.Registry,
		dlq:          params.DLQRepository,
		metrics:      params.Metrics,
		newPublisher: params.PublisherFactory,
		publishers:   map[string]publisher{},
		batchSize:    positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts:  positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval: defaultPollInterval,
		jitter:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          params.Now,
	}
	if cfg.PollIntervalMS > 0 {
		svc.pollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	if svc.newPublisher == nil {
		svc.newPublisher = func(topic string) publisher {
			return newGCPPublisher(params.PubSub.Publisher(topic))
		}
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one; an empty poll waits one interval; a failing batch backs off
// exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping failed: %w", err)
	}

	delay := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher stopping")
			return err
		}

		processed, err := s.processBatch(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			s.logg.Error(ctx, "outbox publisher batch error", err)
			delay = nextBackoff(delay, s.pollInterval, maxBackoff)
		case processed:
			delay = s.pollInterval
			continue
		default:
			delay = s.pollInterval
		}

		if err := sleep(ctx, s.withJitter(delay)); err != nil {
			return err
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	claimed := 0
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}
		claimed = len(events)
		for _, event := range events {
			if err := s.settle(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed > 0, err
}

func (s *Service) withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(s.jitter.Int63n(int64(jitterWindow)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

var (
	_ outboxRepository = (*outbox.Repository)(nil)
	_ dlqRepository    = (*outbox.DLQRepository)(nil)
)
