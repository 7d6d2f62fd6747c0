package outbox

import (
	"errors"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"gorm.io/gorm"
)

// DLQRepository stores events the publisher gave up on. Rows keep the full
// payload so an operator can replay them by hand.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// NewDLQEntry snapshots event as a dead letter. attempts is the count
// including the attempt that just failed.
func NewDLQEntry(event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, attempts int, at time.Time) models.OutboxDLQ {
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		AttemptCount:  attempts,
		FailedAt:      at.UTC(),
	}
	if cause != nil {
		msg := truncate(cause.Error())
		entry.ErrorMessage = &msg
	}
	return entry
}

// InsertTx must run in the same transaction that retires the outbox row.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !entry.ErrorReason.IsValid() {
		return errors.New("dlq entry needs a known error reason")
	}
	return tx.Create(&entry).Error
}
