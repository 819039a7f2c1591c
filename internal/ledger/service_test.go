package ledger

import (
	"context"
	"testing"

	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeItemLoader struct {
	items map[uuid.UUID]*models.Item
}

func (f *fakeItemLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

type fakeLocationChecker struct {
	known map[string]bool
}

func (f *fakeLocationChecker) LocationExists(ctx context.Context, location types.LocationRef) (bool, error) {
	return f.known[location.String()], nil
}

type ledgerFixture struct {
	conn      *gorm.DB
	svc       Service
	items     *fakeItemLoader
	locations *fakeLocationChecker
}

func newFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.StockEntry{}, &models.OutboxEvent{}))

	items := &fakeItemLoader{items: map[uuid.UUID]*models.Item{}}
	locations := &fakeLocationChecker{known: map[string]bool{}}
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(NewRepository(conn), db.FromConn(conn), items, locations, outboxSvc)
	require.NoError(t, err)
	return &ledgerFixture{conn: conn, svc: svc, items: items, locations: locations}
}

func (f *ledgerFixture) addItem(active bool) uuid.UUID {
	id := uuid.New()
	f.items.items[id] = &models.Item{ID: id, Name: "Oil Filter", PartNumber: "OF-" + id.String()[:8], IsActive: active}
	return id
}

func (f *ledgerFixture) addLocation(location types.LocationRef) types.LocationRef {
	f.locations.known[location.String()] = true
	return location
}

func countEvents(t *testing.T, conn *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).
		Where("event_type = ?", eventType).
		Count(&count).Error)
	return count
}

func TestCreateEntryValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	_, err := f.svc.CreateEntry(ctx, CreateEntryInput{Location: warehouse, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: -1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	maxLevel := 2
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, MinLevel: 5, MaxLevel: &maxLevel})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateEntryChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	_, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: uuid.New(), Location: warehouse, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	inactive := f.addItem(false)
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: inactive, Location: warehouse, Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	active := f.addItem(true)
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: active, Location: types.VehicleRef(uuid.New()), Quantity: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateEntryRejectsDuplicatePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	created, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 10, MinLevel: 2})
	require.NoError(t, err)
	require.Equal(t, 10, created.Quantity)
	require.Equal(t, warehouse, created.Location)

	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 3})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// Same item at a different location is a separate entry.
	vehicle := f.addLocation(types.VehicleRef(uuid.New()))
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: vehicle, Quantity: 3})
	require.NoError(t, err)
}

func TestCreateEntryEmitsInitialEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	_, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 2, MinLevel: 5})
	require.NoError(t, err)

	require.EqualValues(t, 1, countEvents(t, f.conn, enums.EventStockAdjusted))
	require.EqualValues(t, 1, countEvents(t, f.conn, enums.EventStockBelowMinimum))
}

func TestStockAtReturnsNilWhenAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	got, err := f.svc.StockAt(ctx, itemID, warehouse)
	require.NoError(t, err)
	require.Nil(t, got)

	created, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 4})
	require.NoError(t, err)

	got, err = f.svc.StockAt(ctx, itemID, warehouse)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.ID, got.ID)
}

func TestAdjustQuantityAppliesDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	entry, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 10})
	require.NoError(t, err)

	adjusted, err := f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: 5, Reason: "restock"})
	require.NoError(t, err)
	require.Equal(t, 15, adjusted.Quantity)

	adjusted, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: -15, Reason: "consumed on job"})
	require.NoError(t, err)
	require.Equal(t, 0, adjusted.Quantity)

	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: 0})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: uuid.New(), Delta: 1})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestAdjustQuantityNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	entry, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 3})
	require.NoError(t, err)
	adjustedBefore := countEvents(t, f.conn, enums.EventStockAdjusted)

	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: -4})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvariant))

	// The failed adjustment leaves both the row and the outbox untouched.
	got, err := f.svc.StockAt(ctx, itemID, warehouse)
	require.NoError(t, err)
	require.Equal(t, 3, got.Quantity)
	require.Equal(t, adjustedBefore, countEvents(t, f.conn, enums.EventStockAdjusted))
}

func TestAdjustQuantityFlagsMinimumCrossing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	entry, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 10, MinLevel: 5})
	require.NoError(t, err)
	require.EqualValues(t, 0, countEvents(t, f.conn, enums.EventStockBelowMinimum))

	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: -6})
	require.NoError(t, err)
	require.EqualValues(t, 1, countEvents(t, f.conn, enums.EventStockBelowMinimum))

	// Already below: a further decrement does not warn again.
	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: -1})
	require.NoError(t, err)
	require.EqualValues(t, 1, countEvents(t, f.conn, enums.EventStockBelowMinimum))
}

func TestTotalQuantitySumsAcrossLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))
	vehicle := f.addLocation(types.VehicleRef(uuid.New()))

	_, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 7})
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: vehicle, Quantity: 3})
	require.NoError(t, err)

	total, err := f.svc.TotalQuantity(ctx, itemID)
	require.NoError(t, err)
	require.Equal(t, 10, total)

	total, err = f.svc.TotalQuantity(ctx, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestDeleteEntryGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.addItem(true)
	warehouse := f.addLocation(types.WarehouseRef(uuid.New()))

	entry, err := f.svc.CreateEntry(ctx, CreateEntryInput{ItemID: itemID, Location: warehouse, Quantity: 2})
	require.NoError(t, err)

	err = f.svc.DeleteEntry(ctx, entry.ID, enums.MemberRoleTechnician)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	err = f.svc.DeleteEntry(ctx, entry.ID, enums.MemberRoleManager)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.AdjustQuantity(ctx, AdjustQuantityInput{EntryID: entry.ID, Delta: -2})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(ctx, entry.ID, enums.MemberRoleManager))

	got, err := f.svc.StockAt(ctx, itemID, warehouse)
	require.NoError(t, err)
	require.Nil(t, got)

	err = f.svc.DeleteEntry(ctx, entry.ID, enums.MemberRoleAdmin)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
