package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/db/dbtest"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmitWritesEnvelopeAndDerivesAggregate(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	fixed := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	listID, userID := uuid.New(), uuid.New()

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:   enums.EventShoppingListFinalized,
			AggregateID: listID,
			Actor:       &ActorRef{UserID: userID},
			Data:        payloads.ShoppingListFinalizedEvent{ShoppingListID: listID, UserID: userID},
		})
	}))

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row).Error)
	assert.Equal(t, enums.AggregateShoppingList, row.AggregateType)
	assert.Equal(t, listID, row.AggregateID)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, fixed.Equal(envelope.OccurredAt))
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, userID, envelope.Actor.UserID)
	assert.Contains(t, string(envelope.Data), listID.String())
}

func TestEmitRejectsMalformedEvents(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Emit(ctx, nil, DomainEvent{EventType: enums.EventItemBecameCritical, AggregateID: uuid.New()}), errNoTx)

	cases := map[string]DomainEvent{
		"unknown type":       {EventType: "item.deleted", AggregateID: uuid.New()},
		"aggregate mismatch": {EventType: enums.EventItemBecameCritical, AggregateType: enums.AggregateShoppingList, AggregateID: uuid.New()},
		"missing aggregate":  {EventType: enums.EventItemBecameCritical},
	}
	for name, event := range cases {
		err := conn.Transaction(func(tx *gorm.DB) error { return svc.Emit(ctx, tx, event) })
		assert.Error(t, err, name)
	}

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()

	fresh := models.OutboxEvent{EventType: enums.EventItemBecameCritical, AggregateType: enums.AggregateItem, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	stale := fresh
	require.NoError(t, repo.Insert(conn, fresh))
	require.NoError(t, repo.Insert(conn, stale))

	pending, err := repo.FetchUnpublishedForPublish(conn, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, repo.MarkFailedTx(conn, pending[0].ID, errors.New(strings.Repeat("x", 2*maxErrorLen))))
	require.NoError(t, repo.MarkPublishedTx(conn, pending[1].ID, now.Add(-48*time.Hour)))

	var failed models.OutboxEvent
	require.NoError(t, conn.First(&failed, "id = ?", pending[0].ID).Error)
	assert.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	assert.Len(t, *failed.LastError, maxErrorLen)

	left, err := repo.FetchUnpublishedForPublish(conn, 10)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	deleted, err := repo.DeletePublishedBefore(context.Background(), nil, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestDLQInsertRequiresKnownReason(t *testing.T) {
	conn := dbtest.Open(t)
	dlq := NewDLQRepository(conn)
	event := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventItemBecameCritical, AggregateType: enums.AggregateItem, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}

	bad := NewDLQEntry(event, "timeout", nil, 1, time.Now())
	assert.Error(t, dlq.InsertTx(conn, bad))
	assert.Error(t, dlq.InsertTx(nil, bad))

	entry := NewDLQEntry(event, enums.OutboxDLQReasonMaxAttempts, errors.New("deadline exceeded"), 5, time.Now())
	require.NoError(t, dlq.InsertTx(conn, entry))

	var stored models.OutboxDLQ
	require.NoError(t, conn.First(&stored).Error)
	assert.Equal(t, event.ID, stored.EventID)
	assert.Equal(t, 5, stored.AttemptCount)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "deadline exceeded", *stored.ErrorMessage)
}
