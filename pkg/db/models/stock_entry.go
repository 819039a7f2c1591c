package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
)

// StockEntry records how much of one item exists at one location. Exactly one
// of WarehouseID/VehicleID is set; the check constraint backs up the
// application-level invariant. One entry per (item, location) pair.
type StockEntry struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ItemID      uuid.UUID  `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_stock_entries_item_warehouse;uniqueIndex:ux_stock_entries_item_vehicle"`
	WarehouseID *uuid.UUID `gorm:"column:warehouse_id;type:uuid;uniqueIndex:ux_stock_entries_item_warehouse;check:chk_stock_entries_one_location,(warehouse_id IS NULL) != (vehicle_id IS NULL)"`
	VehicleID   *uuid.UUID `gorm:"column:vehicle_id;type:uuid;uniqueIndex:ux_stock_entries_item_vehicle"`
	Quantity    int        `gorm:"column:quantity;not null;default:0"`
	MinLevel    int        `gorm:"column:min_level;not null;default:0"`
	MaxLevel    *int       `gorm:"column:max_level"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Location resolves the entry's location reference.
func (e StockEntry) Location() types.LocationRef {
	if e.WarehouseID != nil {
		return types.WarehouseRef(*e.WarehouseID)
	}
	if e.VehicleID != nil {
		return types.VehicleRef(*e.VehicleID)
	}
	return types.LocationRef{}
}

// LocationType reports which kind of location holds this entry.
func (e StockEntry) LocationType() enums.LocationType {
	return e.Location().Type
}

// IsBelowMinimum reports whether the entry has dropped under its threshold.
func (e StockEntry) IsBelowMinimum() bool {
	return e.Quantity < e.MinLevel
}
