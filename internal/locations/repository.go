package locations

import (
	"context"

	"github.com/fleetparts/fleetparts-backend/internal/repo"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires warehouse and vehicle persistence.
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

// CreateWarehouse inserts a warehouse row.
func (r *Repository) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.DB(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

// CreateVehicle inserts a vehicle row.
func (r *Repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.DB(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindWarehouseByID loads the warehouse.
func (r *Repository) FindWarehouseByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.DB(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// FindVehicleByID loads the vehicle.
func (r *Repository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.DB(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SaveVehicle persists the full vehicle row.
func (r *Repository) SaveVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.DB(ctx).Save(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// ListWarehouses returns the full directory, oldest first.
func (r *Repository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	if err := r.DB(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// ListVehicles returns the full directory, oldest first.
func (r *Repository) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.DB(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// LocationExists reports whether the referenced location row exists.
func (r *Repository) LocationExists(ctx context.Context, location types.LocationRef) (bool, error) {
	var count int64
	tx := r.DB(ctx)
	if location.Type == enums.LocationTypeWarehouse {
		tx = tx.Model(&models.Warehouse{})
	} else {
		tx = tx.Model(&models.Vehicle{})
	}
	if err := tx.Where("id = ?", location.ID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteWarehouse removes the warehouse and its stock entries. The FK also
// cascades in Postgres; the explicit delete keeps the behavior uniform
// across drivers and inside the caller's transaction.
func (r *Repository) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).
		Delete(&models.StockEntry{}, "warehouse_id = ?", id).Error; err != nil {
		return err
	}
	return r.DB(ctx).Delete(&models.Warehouse{}, "id = ?", id).Error
}

// DeleteVehicle removes the vehicle and its stock entries.
func (r *Repository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).
		Delete(&models.StockEntry{}, "vehicle_id = ?", id).Error; err != nil {
		return err
	}
	return r.DB(ctx).Delete(&models.Vehicle{}, "id = ?", id).Error
}
