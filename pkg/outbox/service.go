package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DomainEvent is what services hand to Emit. AggregateType may be left empty;
// it is derived from EventType.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Emitter writes domain events inside the caller's transaction, so an event
// exists iff the change that produced it committed.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

var (
	errNoTx             = errors.New("outbox: transaction required")
	errAggregateMissing = errors.New("outbox: aggregate id required")
)

type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errNoTx
	}
	row, envelope, err := s.seal(event)
	if err != nil {
		return err
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return fmt.Errorf("outbox: insert %s: %w", event.EventType, err)
	}

	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":     envelope.EventID,
			"event_type":   row.EventType,
			"aggregate_id": row.AggregateID.String(),
		}), "outbox.queued")
	}
	return nil
}

// seal checks the event and renders the row that will be stored.
func (s *Service) seal(event DomainEvent) (models.OutboxEvent, PayloadEnvelope, error) {
	aggregate := event.EventType.Aggregate()
	switch {
	case aggregate == "":
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("outbox: unknown event type %q", event.EventType)
	case event.AggregateType != "" && event.AggregateType != aggregate:
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("outbox: %s is not emitted for %s", event.EventType, event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return models.OutboxEvent{}, PayloadEnvelope{}, errAggregateMissing
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("outbox: encode %s: %w", event.EventType, err)
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	if envelope.Version == 0 {
		envelope.Version = EnvelopeVersion
	}
	if envelope.OccurredAt.IsZero() {
		envelope.OccurredAt = s.now().UTC()
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, err
	}
	return models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: aggregate,
		AggregateID:   event.AggregateID,
		Payload:       payload,
	}, envelope, nil
}
