package locations

import (
	"context"
	"testing"

	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:locations_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Warehouse{}, &models.Vehicle{}, &models.StockEntry{}))

	svc, err := NewService(NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestCreateWarehouseAndLookup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "  "})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	address := "12 Depot Rd"
	created, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: "Main Depot", Address: &address})
	require.NoError(t, err)
	require.Equal(t, "Main Depot", created.Name)

	got, err := svc.GetWarehouse(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	exists, err := svc.LocationExists(ctx, types.WarehouseRef(created.ID))
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = svc.LocationExists(ctx, types.VehicleRef(created.ID))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestOperatorAssignmentLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, CreateVehicleInput{Name: "Van 7"})
	require.NoError(t, err)
	require.Nil(t, vehicle.AssignedOperatorID)

	_, err = svc.AssignOperator(ctx, vehicle.ID, uuid.Nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	operatorID := uuid.New()
	assigned, err := svc.AssignOperator(ctx, vehicle.ID, operatorID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedOperatorID)
	require.Equal(t, operatorID, *assigned.AssignedOperatorID)

	replacement := uuid.New()
	assigned, err = svc.AssignOperator(ctx, vehicle.ID, replacement)
	require.NoError(t, err)
	require.Equal(t, replacement, *assigned.AssignedOperatorID)

	cleared, err := svc.UnassignOperator(ctx, vehicle.ID)
	require.NoError(t, err)
	require.Nil(t, cleared.AssignedOperatorID)

	_, err = svc.AssignOperator(ctx, uuid.New(), operatorID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListLocations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"North Depot", "South Depot"} {
		_, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.CreateVehicle(ctx, CreateVehicleInput{Name: "Van 1"})
	require.NoError(t, err)

	warehouses, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, warehouses, 2)

	vehicles, err := svc.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
}

func TestDeleteVehicleCascadesStockEntries(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, CreateVehicleInput{Name: "Van 3"})
	require.NoError(t, err)

	vehicleID := vehicle.ID
	entry := &models.StockEntry{ItemID: uuid.New(), VehicleID: &vehicleID, Quantity: 4}
	require.NoError(t, conn.Create(entry).Error)

	err = svc.DeleteVehicle(ctx, vehicleID, enums.MemberRoleTechnician)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, svc.DeleteVehicle(ctx, vehicleID, enums.MemberRoleManager))

	var entryCount int64
	require.NoError(t, conn.Model(&models.StockEntry{}).Where("vehicle_id = ?", vehicleID).Count(&entryCount).Error)
	require.EqualValues(t, 0, entryCount)

	_, err = svc.GetVehicle(ctx, vehicleID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
