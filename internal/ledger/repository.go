package ledger

import (
	"context"

	"github.com/fleetparts/fleetparts-backend/internal/repo"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires stock entry persistence. Locking reads only make sense on
// a repository bound to a transaction via WithTx.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// Create inserts a new stock entry row.
func (r *Repository) Create(ctx context.Context, entry *models.StockEntry) (*models.StockEntry, error) {
	if err := r.DB(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Save persists the full entry row.
func (r *Repository) Save(ctx context.Context, entry *models.StockEntry) (*models.StockEntry, error) {
	if err := r.DB(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FindByID loads the entry.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := r.DB(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindForUpdate loads the entry under a FOR UPDATE row lock.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByItemAndLocation returns the single entry for the pair, if any.
func (r *Repository) FindByItemAndLocation(ctx context.Context, itemID uuid.UUID, location types.LocationRef) (*models.StockEntry, error) {
	tx := r.DB(ctx).Where("item_id = ?", itemID)
	if location.Type == enums.LocationTypeWarehouse {
		tx = tx.Where("warehouse_id = ?", location.ID)
	} else {
		tx = tx.Where("vehicle_id = ?", location.ID)
	}
	var entry models.StockEntry
	if err := tx.First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByItemAndVehicleForUpdate locks the vehicle-side entry for the pair.
func (r *Repository) FindByItemAndVehicleForUpdate(ctx context.Context, itemID, vehicleID uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND vehicle_id = ?", itemID, vehicleID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByItem reports how many entries reference the item.
func (r *Repository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.StockEntry{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// SumByItem totals the quantity across every location at read time.
func (r *Repository) SumByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var total struct {
		Quantity int
	}
	err := r.DB(ctx).
		Model(&models.StockEntry{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity").
		Where("item_id = ?", itemID).
		Scan(&total).Error
	return total.Quantity, err
}

// ListByItem returns every entry holding the item.
func (r *Repository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	if err := r.DB(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByLocation returns every entry sitting at the location.
func (r *Repository) ListByLocation(ctx context.Context, location types.LocationRef) ([]models.StockEntry, error) {
	tx := r.DB(ctx)
	if location.Type == enums.LocationTypeWarehouse {
		tx = tx.Where("warehouse_id = ?", location.ID)
	} else {
		tx = tx.Where("vehicle_id = ?", location.ID)
	}
	var entries []models.StockEntry
	if err := tx.Order("created_at ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes the entry row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.StockEntry{}, "id = ?", id).Error
}
