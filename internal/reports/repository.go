package reports

import (
	"context"

	"github.com/fleetparts/fleetparts-backend/internal/repo"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the read-side aggregation queries. Everything here joins
// stock entries against items; entries whose item row is gone are excluded
// by the inner join.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type entryItemRow struct {
	EntryID     uuid.UUID
	ItemID      uuid.UUID
	PartNumber  string
	ItemName    string
	IsActive    bool
	WarehouseID *uuid.UUID
	VehicleID   *uuid.UUID
	Quantity    int
	MinLevel    int
}

func (row entryItemRow) location() types.LocationRef {
	if row.WarehouseID != nil {
		return types.WarehouseRef(*row.WarehouseID)
	}
	if row.VehicleID != nil {
		return types.VehicleRef(*row.VehicleID)
	}
	return types.LocationRef{}
}

const entryItemColumns = "stock_entries.id AS entry_id, stock_entries.item_id, " +
	"items.part_number, items.name AS item_name, items.is_active, " +
	"stock_entries.warehouse_id, stock_entries.vehicle_id, " +
	"stock_entries.quantity, stock_entries.min_level"

// LowStock returns entries under their minimum, largest deficit first.
func (r *Repository) LowStock(ctx context.Context) ([]entryItemRow, error) {
	var rows []entryItemRow
	err := r.DB(ctx).
		Table("stock_entries").
		Select(entryItemColumns).
		Joins("JOIN items ON items.id = stock_entries.item_id").
		Where("stock_entries.quantity < stock_entries.min_level").
		Order("(stock_entries.min_level - stock_entries.quantity) DESC").
		Order("stock_entries.id ASC").
		Scan(&rows).Error
	return rows, err
}

// LocationValue sums quantity times current unit price at one location.
func (r *Repository) LocationValue(ctx context.Context, location types.LocationRef) (decimal.Decimal, error) {
	query := r.DB(ctx).
		Table("stock_entries").
		Select("COALESCE(SUM(stock_entries.quantity * items.unit_price), 0) AS value").
		Joins("JOIN items ON items.id = stock_entries.item_id")
	if location.Type == enums.LocationTypeWarehouse {
		query = query.Where("stock_entries.warehouse_id = ?", location.ID)
	} else {
		query = query.Where("stock_entries.vehicle_id = ?", location.ID)
	}

	var row struct {
		Value decimal.Decimal
	}
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Value, nil
}

// EntriesWithItems returns every entry that still resolves to an item
// definition, ordered for stable grouping.
func (r *Repository) EntriesWithItems(ctx context.Context) ([]entryItemRow, error) {
	var rows []entryItemRow
	err := r.DB(ctx).
		Table("stock_entries").
		Select(entryItemColumns).
		Joins("JOIN items ON items.id = stock_entries.item_id").
		Order("items.part_number ASC").
		Order("items.id ASC").
		Order("stock_entries.created_at ASC").
		Order("stock_entries.id ASC").
		Scan(&rows).Error
	return rows, err
}
