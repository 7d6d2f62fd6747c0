package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is the newest envelope layout; the publisher refuses rows
// written by a newer build.
const EnvelopeVersion = 1

// PayloadEnvelope is the JSON document stored in outbox_events.payload and
// sent as the Pub/Sub message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// ActorRef is the user whose request caused the event.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
}
