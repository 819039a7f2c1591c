package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeVehicleLoader struct {
	vehicles map[uuid.UUID]*models.Vehicle
}

func (f *fakeVehicleLoader) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

type workflowFixture struct {
	conn     *gorm.DB
	svc      Service
	vehicles *fakeVehicleLoader
	itemID   uuid.UUID
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	dsn := "file:transfers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.StockEntry{}, &models.Transfer{}, &models.OutboxEvent{}))

	vehicles := &fakeVehicleLoader{vehicles: map[uuid.UUID]*models.Vehicle{}}
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(NewRepository(conn), ledger.NewRepository(conn), vehicles, db.FromConn(conn), outboxSvc, nil, config.StockingConfig{})
	require.NoError(t, err)
	return &workflowFixture{conn: conn, svc: svc, vehicles: vehicles, itemID: uuid.New()}
}

func (f *workflowFixture) addVehicle(t *testing.T, operatorID *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.vehicles.vehicles[id] = &models.Vehicle{ID: id, Name: "Van", AssignedOperatorID: operatorID}
	return id
}

func (f *workflowFixture) addWarehouseEntry(t *testing.T, quantity int) *models.StockEntry {
	t.Helper()
	warehouseID := uuid.New()
	entry := &models.StockEntry{ItemID: f.itemID, WarehouseID: &warehouseID, Quantity: quantity}
	require.NoError(t, f.conn.Create(entry).Error)
	return entry
}

func (f *workflowFixture) entryQuantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var entry models.StockEntry
	require.NoError(t, f.conn.First(&entry, "id = ?", id).Error)
	return entry.Quantity
}

func (f *workflowFixture) totalQuantity(t *testing.T) int {
	t.Helper()
	var total struct{ Quantity int }
	require.NoError(t, f.conn.Model(&models.StockEntry{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity").
		Where("item_id = ?", f.itemID).
		Scan(&total).Error)
	return total.Quantity
}

func (f *workflowFixture) eventCount(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).
		Where("event_type = ?", eventType).
		Count(&count).Error)
	return count
}

func manager() Actor {
	return Actor{OperatorID: uuid.New(), Role: enums.MemberRoleManager}
}

func TestRequestGuards(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	input := RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}

	_, err := f.svc.Request(ctx, input, Actor{OperatorID: uuid.New(), Role: enums.MemberRoleTechnician})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 0}, manager())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Request(ctx, RequestInput{SourceEntryID: uuid.New(), DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 11}, manager())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	unmanned := f.addVehicle(t, nil)
	_, err = f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: unmanned, Quantity: 4}, manager())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// A vehicle-side entry cannot be a transfer source.
	vehicleEntryOwner := uuid.New()
	vehicleEntry := &models.StockEntry{ItemID: f.itemID, VehicleID: &vehicleEntryOwner, Quantity: 10}
	require.NoError(t, f.conn.Create(vehicleEntry).Error)
	_, err = f.svc.Request(ctx, RequestInput{SourceEntryID: vehicleEntry.ID, DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestRequestSnapshotsOperatorAndLeavesLedger(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	requester := manager()
	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}, requester)
	require.NoError(t, err)
	require.Equal(t, enums.TransferStatusPending, transfer.Status)
	require.Equal(t, operatorID, transfer.AssignedToID)
	require.Equal(t, requester.OperatorID, transfer.RequestedByID)
	require.Nil(t, transfer.ProcessedAt)

	// Requesting reserves nothing.
	require.Equal(t, 10, f.entryQuantity(t, source.ID))
	require.EqualValues(t, 1, f.eventCount(t, enums.EventTransferRequested))
}

func TestAcceptMovesStockAtomically(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician})
	require.NoError(t, err)
	require.Equal(t, enums.TransferStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.ProcessedAt)
	require.NotNil(t, accepted.DestEntryID)

	require.Equal(t, 6, f.entryQuantity(t, source.ID))
	require.Equal(t, 4, f.entryQuantity(t, *accepted.DestEntryID))
	require.Equal(t, 10, f.totalQuantity(t))

	// Lazily created vehicle entry starts with zero thresholds.
	var dest models.StockEntry
	require.NoError(t, f.conn.First(&dest, "id = ?", *accepted.DestEntryID).Error)
	require.NotNil(t, dest.VehicleID)
	require.Equal(t, vehicleID, *dest.VehicleID)
	require.Equal(t, 0, dest.MinLevel)
	require.Nil(t, dest.MaxLevel)

	require.EqualValues(t, 1, f.eventCount(t, enums.EventTransferAccepted))
}

func TestAcceptCreditsExistingVehicleEntry(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	existing := &models.StockEntry{ItemID: f.itemID, VehicleID: &vehicleID, Quantity: 2}
	require.NoError(t, f.conn.Create(existing).Error)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 3}, manager())
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician})
	require.NoError(t, err)
	require.Equal(t, existing.ID, *accepted.DestEntryID)
	require.Equal(t, 5, f.entryQuantity(t, existing.ID))
	require.Equal(t, 7, f.entryQuantity(t, source.ID))
	require.Equal(t, 12, f.totalQuantity(t))
}

func TestAcceptFailsWhenStockShrank(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 8}, manager())
	require.NoError(t, err)

	// Stock left the warehouse between request and acceptance.
	require.NoError(t, f.conn.Model(&models.StockEntry{}).
		Where("id = ?", source.ID).
		Update("quantity", 5).Error)

	_, err = f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	// Nothing moved and the transfer is still decidable.
	require.Equal(t, 5, f.entryQuantity(t, source.ID))
	got, err := f.svc.Get(ctx, transfer.ID)
	require.NoError(t, err)
	require.Equal(t, enums.TransferStatusPending, got.Status)
	require.EqualValues(t, 0, f.eventCount(t, enums.EventTransferAccepted))

	// A smaller second attempt is not offered; the same transfer succeeds
	// once stock returns.
	require.NoError(t, f.conn.Model(&models.StockEntry{}).
		Where("id = ?", source.ID).
		Update("quantity", 9).Error)
	_, err = f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician})
	require.NoError(t, err)
	require.Equal(t, 1, f.entryQuantity(t, source.ID))
}

func TestResolutionIsExclusiveAndTerminal(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.NoError(t, err)

	stranger := Actor{OperatorID: uuid.New(), Role: enums.MemberRoleTechnician}
	_, err = f.svc.Accept(ctx, transfer.ID, stranger)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
	_, err = f.svc.Reject(ctx, transfer.ID, stranger, "not mine")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	assignee := Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician}
	_, err = f.svc.Accept(ctx, transfer.ID, assignee)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, transfer.ID, assignee)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	_, err = f.svc.Reject(ctx, transfer.ID, assignee, "changed my mind")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	// The repeated attempts moved nothing further.
	require.Equal(t, 6, f.entryQuantity(t, source.ID))
	require.EqualValues(t, 1, f.eventCount(t, enums.EventTransferAccepted))
	require.EqualValues(t, 0, f.eventCount(t, enums.EventTransferRejected))
}

func TestRejectKeepsLedgerUntouched(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician}, "no room in the van")
	require.NoError(t, err)
	require.Equal(t, enums.TransferStatusRejected, rejected.Status)
	require.NotNil(t, rejected.ProcessedAt)
	require.NotNil(t, rejected.RejectionReason)
	require.Equal(t, "no room in the van", *rejected.RejectionReason)
	require.Nil(t, rejected.DestEntryID)

	require.Equal(t, 10, f.entryQuantity(t, source.ID))
	require.EqualValues(t, 1, f.eventCount(t, enums.EventTransferRejected))

	_, err = f.svc.Reject(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician}, "again")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestReassignmentDoesNotMoveDecisionRights(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	operatorID := uuid.New()
	vehicleID := f.addVehicle(t, &operatorID)
	source := f.addWarehouseEntry(t, 10)

	transfer, err := f.svc.Request(ctx, RequestInput{SourceEntryID: source.ID, DestVehicleID: vehicleID, Quantity: 4}, manager())
	require.NoError(t, err)

	// The vehicle changes hands while the transfer is in flight.
	replacement := uuid.New()
	f.vehicles.vehicles[vehicleID].AssignedOperatorID = &replacement

	_, err = f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: replacement, Role: enums.MemberRoleTechnician})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Accept(ctx, transfer.ID, Actor{OperatorID: operatorID, Role: enums.MemberRoleTechnician})
	require.NoError(t, err)
}

func TestLogFiltersAndPaginates(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	technicianA := uuid.New()
	technicianB := uuid.New()
	source := f.addWarehouseEntry(t, 100)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	seed := []struct {
		assignee    uuid.UUID
		status      enums.TransferStatus
		processedAt time.Time
	}{
		{technicianA, enums.TransferStatusAccepted, base},
		{technicianB, enums.TransferStatusRejected, base.Add(1 * time.Minute)},
		{technicianA, enums.TransferStatusRejected, base.Add(2 * time.Minute)},
		{technicianA, enums.TransferStatusAccepted, base.Add(3 * time.Minute)},
	}
	for _, row := range seed {
		processedAt := row.processedAt
		require.NoError(t, f.conn.Create(&models.Transfer{
			ItemID:        f.itemID,
			SourceEntryID: source.ID,
			DestVehicleID: uuid.New(),
			Quantity:      1,
			Status:        row.status,
			RequestedByID: uuid.New(),
			AssignedToID:  row.assignee,
			ProcessedAt:   &processedAt,
		}).Error)
	}
	// A pending transfer never shows up in the log.
	require.NoError(t, f.conn.Create(&models.Transfer{
		ItemID:        f.itemID,
		SourceEntryID: source.ID,
		DestVehicleID: uuid.New(),
		Quantity:      1,
		Status:        enums.TransferStatusPending,
		RequestedByID: uuid.New(),
		AssignedToID:  technicianA,
	}).Error)

	page, err := f.svc.Log(ctx, LogInput{Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Len(t, page.Transfers, 3)
	require.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)
	require.True(t, page.Transfers[0].ProcessedAt.After(*page.Transfers[1].ProcessedAt))

	rest, err := f.svc.Log(ctx, LogInput{Pagination: pagination.Params{Limit: 3, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, rest.Transfers, 1)
	require.False(t, rest.HasMore)

	filtered, err := f.svc.Log(ctx, LogInput{TechnicianID: &technicianA, Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, filtered.Transfers, 3)
	for _, row := range filtered.Transfers {
		require.Equal(t, technicianA, row.AssignedToID)
	}
}
