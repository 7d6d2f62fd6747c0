// Package registry maps outbox event types to Pub/Sub topics and payload schemas.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/angelmondragon/smartlist-backend/pkg/config"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
	newPayload    func() any
}

// ResolvedEvent is a validated outbox row with its payload decoded.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// NonRetryableError marks a row that can never be delivered as stored.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string { return e.Err.Error() }

func (e NonRetryableError) Unwrap() error { return e.Err }

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func rejectf(format string, args ...any) error {
	return NewNonRetryableError(fmt.Errorf(format, args...))
}

type EventRegistry struct {
	byType map[enums.OutboxEventType]EventDescriptor
}

// NewEventRegistry routes stock signals to the inventory topic and purchase
// records to the shopping topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.InventoryTopic == "" || cfg.ShoppingTopic == "" {
		return nil, fmt.Errorf("inventory and shopping topics are required")
	}
	descriptors := []EventDescriptor{
		{
			EventType:     enums.EventItemBecameCritical,
			AggregateType: enums.AggregateItem,
			Topic:         cfg.InventoryTopic,
			newPayload:    func() any { return &payloads.ItemBecameCriticalEvent{} },
		},
		{
			EventType:     enums.EventShoppingListFinalized,
			AggregateType: enums.AggregateShoppingList,
			Topic:         cfg.ShoppingTopic,
			newPayload:    func() any { return &payloads.ShoppingListFinalizedEvent{} },
		},
	}
	reg := &EventRegistry{byType: make(map[enums.OutboxEventType]EventDescriptor, len(descriptors))}
	for _, desc := range descriptors {
		reg.byType[desc.EventType] = desc
	}
	return reg, nil
}

// Topics lists the distinct topics, sorted.
func (r *EventRegistry) Topics() []string {
	var out []string
	for _, desc := range r.byType {
		if !slices.Contains(out, desc.Topic) {
			out = append(out, desc.Topic)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve checks the row against its descriptor and decodes the payload.
// Every failure is non-retryable: a stored row does not change between attempts.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.byType[event.EventType]
	switch {
	case !ok:
		return nil, rejectf("unsupported event type %s", event.EventType)
	case desc.AggregateType != event.AggregateType:
		return nil, rejectf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return nil, rejectf("missing aggregate_id")
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, rejectf("decode envelope: %w", err)
	}
	if envelope.Version > outbox.EnvelopeVersion {
		return nil, rejectf("envelope version %d is newer than %d", envelope.Version, outbox.EnvelopeVersion)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, rejectf("payload missing for %s", event.EventType)
	}

	payload := desc.newPayload()
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, rejectf("decode %s payload: %w", event.EventType, err)
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
