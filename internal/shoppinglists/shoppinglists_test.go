package shoppinglists

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/smartlist-backend/internal/inventory"
	"github.com/angelmondragon/smartlist-backend/internal/users"
	"github.com/angelmondragon/smartlist-backend/pkg/db"
	"github.com/angelmondragon/smartlist-backend/pkg/db/dbtest"
	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/angelmondragon/smartlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/pagination"
	"github.com/angelmondragon/smartlist-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

type recordingEmitter struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
}

func (r *recordingEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEmitter) ofType(t enums.OutboxEventType) []outbox.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []outbox.DomainEvent
	for _, e := range r.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	conn     *gorm.DB
	store    *Repository
	registry *Registry
	coord    inventory.Coordinator
	svc      Service
	emitter  *recordingEmitter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	tx := db.Wrap(conn)
	store := NewRepository(conn)
	emitter := &recordingEmitter{}
	now := func() time.Time { return fixedNow }

	registry, err := NewRegistry(RegistryParams{Store: store, Tx: tx})
	require.NoError(t, err)
	coord, err := inventory.NewCoordinator(inventory.CoordinatorParams{
		Items:  inventory.NewItemRepository(conn),
		Users:  users.NewRepository(conn),
		Lists:  registry,
		Tx:     tx,
		Outbox: emitter,
		Now:    now,
	})
	require.NoError(t, err)
	finalizer, err := NewFinalizer(FinalizerParams{Store: store, Tx: tx, Stock: coord, Outbox: emitter, Now: now})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Registry: registry, Finalizer: finalizer, Refresher: coord})
	require.NoError(t, err)

	return fixture{conn: conn, store: store, registry: registry, coord: coord, svc: svc, emitter: emitter}
}

func daysAgo(n int) *time.Time {
	day := inventory.Today(fixedNow).AddDate(0, 0, -n)
	return &day
}

func seedItem(t *testing.T, conn *gorm.DB, userID uuid.UUID, name, qty, perDay string, last *time.Time) *models.Item {
	t.Helper()
	item := &models.Item{
		UserID:               userID,
		Name:                 name,
		Quantity:             decimal.RequireFromString(qty),
		UnitOfMeasure:        enums.UnitEach,
		AvgConsumptionValue:  decimal.RequireFromString(perDay),
		AvgConsumptionUnit:   enums.ConsumptionPerDay,
		AvgConsumptionPerDay: decimal.RequireFromString(perDay),
		LastStockUpdate:      last,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func countActive(t *testing.T, conn *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.ShoppingList{}).Where("user_id = ? AND active = ?", userID, true).Count(&n).Error)
	return n
}

func reloadItem(t *testing.T, conn *gorm.DB, id uuid.UUID) models.Item {
	t.Helper()
	var item models.Item
	require.NoError(t, conn.First(&item, "id = ?", id).Error)
	return item
}

// activeWith refreshes alice's inventory and returns the resulting list.
func activeWith(t *testing.T, f fixture, userID uuid.UUID) ListDTO {
	t.Helper()
	list, err := f.svc.GetActive(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func entryFor(t *testing.T, list ListDTO, itemID uuid.UUID) EntryDTO {
	t.Helper()
	for _, e := range list.Items {
		if e.ItemID != nil && *e.ItemID == itemID {
			return e
		}
	}
	t.Fatalf("item %s not on list", itemID)
	return EntryDTO{}
}

func TestCreateActiveIfAbsentKeepsOneActiveList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 3)

	created, err := f.store.CreateActiveIfAbsent(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.store.CreateActiveIfAbsent(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), countActive(t, f.conn, user.ID))
}

func TestSecondActiveListRejectedByIndex(t *testing.T) {
	f := newFixture(t)
	user := dbtest.SeedUser(t, f.conn, 3)

	require.NoError(t, f.conn.Create(&models.ShoppingList{UserID: user.ID, Active: true}).Error)
	err := f.conn.Create(&models.ShoppingList{UserID: user.ID, Active: true}).Error
	require.Error(t, err)
	assert.Equal(t, int64(1), countActive(t, f.conn, user.ID))

	closed := fixedNow
	require.NoError(t, f.conn.Create(&models.ShoppingList{UserID: user.ID, Active: false, FinalizedAt: &closed}).Error)
}

func TestAddIfAbsentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 3)
	item := seedItem(t, f.conn, user.ID, "Milk", "0", "1", daysAgo(0))

	first, err := f.registry.AddIfAbsentTx(ctx, nil, user.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.True(t, first.ListCreated)

	second, err := f.registry.AddIfAbsentTx(ctx, nil, user.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.False(t, second.ListCreated)
	assert.Equal(t, first.ShoppingListID, second.ShoppingListID)

	list, err := f.registry.GetActive(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	entry := list.Items[0]
	assert.True(t, entry.PurchasedQuantity.IsZero())
	assert.Nil(t, entry.UnitaryPrice)
	assert.True(t, entry.Subtotal.IsZero())
	assert.Equal(t, "Milk", entry.ItemName)
}

// The test pool holds one connection, so these triggers run one after
// another. TestSecondActiveListRejectedByIndex covers the storage guard.
func TestSerializedFirstTriggersShareOneList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	items := make([]*models.Item, 4)
	for i := range items {
		items[i] = seedItem(t, f.conn, user.ID, uuid.NewString(), "0", "1", daysAgo(0))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(items))
	for _, item := range items {
		wg.Add(1)
		go func(item *models.Item) {
			defer wg.Done()
			errs <- db.Wrap(f.conn).WithTx(ctx, func(tx *gorm.DB) error {
				var owner models.User
				if err := tx.First(&owner, "id = ?", user.ID).Error; err != nil {
					return err
				}
				_, err := f.coord.ProcessItem(ctx, tx, &owner, item)
				return err
			})
		}(item)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), countActive(t, f.conn, user.ID))
	list, err := f.registry.GetActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list.Items, len(items))
}

func TestGetActiveRefreshesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)

	_, err := f.svc.GetActive(ctx, user.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	low := seedItem(t, f.conn, user.ID, "Coffee", "2", "1", daysAgo(2))
	seedItem(t, f.conn, user.ID, "Rice", "10", "1", daysAgo(3))

	list := activeWith(t, f, user.ID)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].ItemID)
	assert.Equal(t, low.ID, *list.Items[0].ItemID)
	assert.Len(t, f.emitter.ofType(enums.EventItemBecameCritical), 1)

	activeWith(t, f, user.ID)
	assert.Len(t, f.emitter.ofType(enums.EventItemBecameCritical), 1)
}

func TestUpdateItemRecomputesSubtotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	item := seedItem(t, f.conn, user.ID, "Coffee", "0", "1", daysAgo(0))
	entry := entryFor(t, activeWith(t, f, user.ID), item.ID)

	got, err := f.svc.UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{PurchasedQuantity: price("3")})
	require.NoError(t, err)
	assert.True(t, got.Subtotal.IsZero())

	got, err = f.svc.UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{
		UnitaryPrice: types.Nullable[decimal.Decimal]{Set: true, Value: price("4.255")},
	})
	require.NoError(t, err)
	assert.Equal(t, "4.26", got.UnitaryPrice.StringFixed(2))
	assert.Equal(t, "12.78", got.Subtotal.StringFixed(2))

	got, err = f.svc.UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{
		UnitaryPrice: types.Nullable[decimal.Decimal]{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, got.UnitaryPrice)
	assert.True(t, got.Subtotal.IsZero())

	_, err = f.svc.UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{PurchasedQuantity: price("-1")})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.ReasonInvalidQuantity))
	_, err = f.svc.UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{
		UnitaryPrice: types.Nullable[decimal.Decimal]{Set: true, Value: price("-1")},
	})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.ReasonInvalidPrice))
}

func TestEntryEditsRejectForeignUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := dbtest.SeedUser(t, f.conn, 5)
	bob := dbtest.SeedUser(t, f.conn, 5)
	item := seedItem(t, f.conn, alice.ID, "Coffee", "0", "1", daysAgo(0))
	list := activeWith(t, f, alice.ID)
	entry := entryFor(t, list, item.ID)

	_, err := f.svc.UpdateItem(ctx, bob.ID, entry.ID, UpdateEntryRequest{PurchasedQuantity: price("1")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(f.svc.DeleteItem(ctx, bob.ID, entry.ID), pkgerrors.CodeNotFound))
	_, err = f.svc.GetByID(ctx, bob.ID, list.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Finalize(ctx, bob.ID, list.ID, FinalizeRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.DeleteItem(ctx, alice.ID, entry.ID))
	assert.True(t, pkgerrors.IsCode(f.svc.DeleteItem(ctx, alice.ID, entry.ID), pkgerrors.CodeNotFound))

	got, err := f.registry.GetActive(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestFinalizeAppliesPurchasesAndResetsOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	bought := seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	omitted := seedItem(t, f.conn, user.ID, "Sugar", "1", "1", daysAgo(0))
	list := activeWith(t, f, user.ID)
	boughtEntry := entryFor(t, list, bought.ID)
	omittedEntry := entryFor(t, list, omitted.ID)

	_, err := f.svc.UpdateItem(ctx, user.ID, omittedEntry.ID, UpdateEntryRequest{
		PurchasedQuantity: price("4"),
		UnitaryPrice:      types.Nullable[decimal.Decimal]{Set: true, Value: price("1.50")},
	})
	require.NoError(t, err)

	got, err := f.svc.Finalize(ctx, user.ID, list.ID, FinalizeRequest{Items: []PurchasedItem{
		{EntryID: boughtEntry.ID, PurchasedQuantity: decimal.NewFromInt(2), UnitaryPrice: price("5.00")},
	}})
	require.NoError(t, err)
	assert.False(t, got.Active)
	require.NotNil(t, got.FinalizedAt)
	assert.Equal(t, "10.00", got.Total.StringFixed(2))

	b := entryFor(t, got, bought.ID)
	assert.Equal(t, "10.00", b.Subtotal.StringFixed(2))
	o := entryFor(t, got, omitted.ID)
	assert.True(t, o.PurchasedQuantity.IsZero())
	assert.Nil(t, o.UnitaryPrice)
	assert.True(t, o.Subtotal.IsZero())

	assert.Equal(t, "3", reloadItem(t, f.conn, bought.ID).Quantity.String())
	assert.Equal(t, "1", reloadItem(t, f.conn, omitted.ID).Quantity.String())
	assert.Zero(t, countActive(t, f.conn, user.ID))

	events := f.emitter.ofType(enums.EventShoppingListFinalized)
	require.Len(t, events, 1)
	assert.Equal(t, list.ID, events[0].AggregateID)

	_, err = f.svc.Finalize(ctx, user.ID, list.ID, FinalizeRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.ReasonListInactive))

	_, err = f.svc.UpdateItem(ctx, user.ID, boughtEntry.ID, UpdateEntryRequest{PurchasedQuantity: price("1")})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.ReasonListInactive))
}

func TestFinalizeWithNothingBoughtOnlyDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	item := seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	list := activeWith(t, f, user.ID)
	entry := entryFor(t, list, item.ID)

	got, err := f.svc.Finalize(ctx, user.ID, list.ID, FinalizeRequest{Items: []PurchasedItem{
		{EntryID: entry.ID, PurchasedQuantity: decimal.Zero},
	}})
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "1", reloadItem(t, f.conn, item.ID).Quantity.String())
	assert.Zero(t, countActive(t, f.conn, user.ID))
}

func TestFinalizeValidatesBeforeApplying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	first := seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	second := seedItem(t, f.conn, user.ID, "Sugar", "1", "1", daysAgo(0))
	list := activeWith(t, f, user.ID)
	a := entryFor(t, list, first.ID)
	b := entryFor(t, list, second.ID)
	ok := PurchasedItem{EntryID: a.ID, PurchasedQuantity: decimal.NewFromInt(2), UnitaryPrice: price("1")}

	cases := map[string]struct {
		items  []PurchasedItem
		reason pkgerrors.Reason
	}{
		"unknown entry":   {[]PurchasedItem{ok, {EntryID: uuid.New()}}, pkgerrors.ReasonInvalidItemReference},
		"duplicate entry": {[]PurchasedItem{ok, ok}, pkgerrors.ReasonInvalidItemReference},
		"missing price":   {[]PurchasedItem{ok, {EntryID: b.ID, PurchasedQuantity: decimal.NewFromInt(1)}}, pkgerrors.ReasonPriceRequired},
		"negative price":  {[]PurchasedItem{ok, {EntryID: b.ID, PurchasedQuantity: decimal.NewFromInt(1), UnitaryPrice: price("-2")}}, pkgerrors.ReasonInvalidPrice},
		"negative qty":    {[]PurchasedItem{ok, {EntryID: b.ID, PurchasedQuantity: decimal.NewFromInt(-1), UnitaryPrice: price("2")}}, pkgerrors.ReasonInvalidQuantity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Finalize(ctx, user.ID, list.ID, FinalizeRequest{Items: tc.items})
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			assert.True(t, pkgerrors.HasReason(err, tc.reason), "got %v", err)
		})
	}

	assert.Equal(t, "1", reloadItem(t, f.conn, first.ID).Quantity.String())
	assert.Equal(t, int64(1), countActive(t, f.conn, user.ID))
}

func TestNewListAfterFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	first := activeWith(t, f, user.ID)

	_, err := f.svc.Finalize(ctx, user.ID, first.ID, FinalizeRequest{})
	require.NoError(t, err)

	second := activeWith(t, f, user.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, second.Items, 1)

	page, err := f.svc.List(ctx, user.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Lists, 2)
}

func TestDeleteFinalizedBeforeSparesActiveLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	old := activeWith(t, f, user.ID)
	_, err := f.svc.Finalize(ctx, user.ID, old.ID, FinalizeRequest{})
	require.NoError(t, err)
	current := activeWith(t, f, user.ID)

	deleted, err := f.store.DeleteFinalizedBefore(ctx, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.svc.GetByID(ctx, user.ID, old.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	got, err := f.svc.GetByID(ctx, user.ID, current.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)

	var orphans int64
	require.NoError(t, f.conn.Model(&models.ShoppingListItem{}).Where("shopping_list_id = ?", old.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestDeletingItemKeepsFinalizedTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	coffee := seedItem(t, f.conn, user.ID, "Coffee", "1", "1", daysAgo(0))
	list := activeWith(t, f, user.ID)
	entry := entryFor(t, list, coffee.ID)

	_, err := f.svc.Finalize(ctx, user.ID, list.ID, FinalizeRequest{Items: []PurchasedItem{
		{EntryID: entry.ID, PurchasedQuantity: decimal.NewFromInt(2), UnitaryPrice: price("5.00")},
	}})
	require.NoError(t, err)
	current := activeWith(t, f, user.ID)
	require.Len(t, current.Items, 1)

	require.NoError(t, inventory.NewItemRepository(f.conn).Delete(ctx, coffee.ID, user.ID))

	got, err := f.svc.GetByID(ctx, user.ID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ItemID)
	assert.Equal(t, "Coffee", got.Items[0].ItemName)
	assert.True(t, got.Items[0].PurchasedQuantity.Equal(decimal.NewFromInt(2)))

	active, err := f.registry.GetActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, active.ID)
	assert.Empty(t, active.Items)
}

// closingStore finalizes the list the first time a writer takes its share
// lock, standing in for a finalize that commits while the writer waits.
type closingStore struct {
	*Repository
	once *sync.Once
}

func (s closingStore) WithTx(tx *gorm.DB) Store {
	return closingStore{Repository: s.Repository.WithTx(tx).(*Repository), once: s.once}
}

func (s closingStore) ShareByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error) {
	var err error
	s.once.Do(func() { err = s.Repository.Deactivate(ctx, listID, fixedNow) })
	if err != nil {
		return nil, err
	}
	return s.Repository.ShareByIDForUser(ctx, listID, userID)
}

func newClosingRegistry(t *testing.T, f fixture) *Registry {
	t.Helper()
	registry, err := NewRegistry(RegistryParams{
		Store: closingStore{Repository: f.store, once: &sync.Once{}},
		Tx:    db.Wrap(f.conn),
	})
	require.NoError(t, err)
	return registry
}

func TestUpdateItemRejectsListFinalizedConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	item := seedItem(t, f.conn, user.ID, "Coffee", "0", "1", daysAgo(0))
	entry := entryFor(t, activeWith(t, f, user.ID), item.ID)

	_, err := newClosingRegistry(t, f).UpdateItem(ctx, user.ID, entry.ID, UpdateEntryRequest{PurchasedQuantity: price("3")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.ReasonListInactive))

	var stored models.ShoppingListItem
	require.NoError(t, f.conn.First(&stored, "id = ?", entry.ID).Error)
	assert.True(t, stored.PurchasedQuantity.IsZero())
	assert.True(t, stored.Subtotal.IsZero())
}

func TestAddIfAbsentOpensNewListWhenActiveOneCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, 5)
	milk := seedItem(t, f.conn, user.ID, "Milk", "5", "1", daysAgo(0))
	bread := seedItem(t, f.conn, user.ID, "Bread", "5", "1", daysAgo(0))

	first, err := f.registry.AddIfAbsentTx(ctx, nil, user.ID, milk.ID)
	require.NoError(t, err)

	got, err := newClosingRegistry(t, f).AddIfAbsentTx(ctx, nil, user.ID, bread.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ShoppingListID, got.ShoppingListID)
	assert.True(t, got.ListCreated)
	assert.True(t, got.Inserted)
	assert.Equal(t, int64(1), countActive(t, f.conn, user.ID))

	closed, err := f.registry.GetByID(ctx, user.ID, first.ShoppingListID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	require.Len(t, closed.Items, 1)
	require.NotNil(t, closed.Items[0].ItemID)
	assert.Equal(t, milk.ID, *closed.Items[0].ItemID)
}
