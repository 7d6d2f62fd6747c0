package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox/registry"
	"gorm.io/gorm"
)

// verdict is what happens to a row after one delivery attempt.
type verdict struct {
	outcome string
	reason  enums.OutboxDLQErrorReason
	cause   error
}

// judge classifies a publish error. attempts counts the attempt that just failed.
func (s *Service) judge(err error, attempts int) verdict {
	switch {
	case err == nil:
		return verdict{outcome: metrics.OutcomePublished}
	case errors.As(err, new(registry.NonRetryableError)):
		return verdict{outcome: metrics.OutcomeDeadLettered, reason: enums.OutboxDLQReasonNonRetryable, cause: err}
	case attempts >= s.maxAttempts:
		return verdict{
			outcome: metrics.OutcomeDeadLettered,
			reason:  enums.OutboxDLQReasonMaxAttempts,
			cause:   fmt.Errorf("max publish attempts reached: %w", err),
		}
	default:
		return verdict{outcome: metrics.OutcomeRetried, cause: err}
	}
}

// settle delivers one event and records the verdict on its row. It returns an
// error only when bookkeeping fails, which aborts the batch transaction.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	attempts := event.AttemptCount + 1
	fields := eventFields(event)

	resolved, err := s.registry.Resolve(event)
	if err == nil {
		fields["topic"] = resolved.Descriptor.Topic
		fields["event_id"] = resolved.Envelope.EventID
		err = s.publish(ctx, event, resolved)
	}
	v := s.judge(err, attempts)
	s.metrics.Record(string(event.EventType), v.outcome)

	logCtx := s.logg.WithFields(ctx, fields)
	now := s.now().UTC()
	switch v.outcome {
	case metrics.OutcomePublished:
		if err := s.repo.MarkPublishedTx(tx, event.ID, now); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.ObserveLag(now.Sub(event.CreatedAt))
		s.logg.Info(logCtx, "outbox event published")
	case metrics.OutcomeRetried:
		if err := s.repo.MarkFailedTx(tx, event.ID, v.cause); err != nil {
			return fmt.Errorf("mark failed %s: %w", event.ID, err)
		}
		logCtx = s.logg.WithFields(logCtx, map[string]any{"attempt": attempts, "error": v.cause.Error()})
		s.logg.Warn(logCtx, "outbox publish failed, will retry")
	default:
		if err := s.dlq.InsertTx(tx, outbox.NewDLQEntry(event, v.reason, v.cause, attempts, now)); err != nil {
			return fmt.Errorf("insert dlq %s: %w", event.ID, err)
		}
		if err := s.repo.MarkTerminalTx(tx, event.ID, v.cause, now); err != nil {
			return fmt.Errorf("retire %s: %w", event.ID, err)
		}
		logCtx = s.logg.WithFields(logCtx, map[string]any{"reason": v.reason, "error": v.cause.Error()})
		s.logg.Warn(logCtx, "outbox event dead-lettered")
	}
	return nil
}

func (s *Service) publisherFor(topic string) publisher {
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	pub := s.newPublisher(topic)
	if pub != nil {
		s.publishers[topic] = pub
	}
	return pub
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFor(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	started := time.Now()
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: messageAttributes(event, resolved),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher for %s returned no result", topic))
	}
	_, err := result.Get(ctx)
	s.metrics.ObservePublish(time.Since(started))
	return err
}

// messageAttributes lets subscribers route and dedupe without decoding the body.
func messageAttributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	return map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"occurred_at":    resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{Publisher: p}
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
