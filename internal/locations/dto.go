package locations

import (
	"time"

	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/google/uuid"
)

// WarehouseDTO is the API shape of a stationary location.
type WarehouseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VehicleDTO is the API shape of a mobile location.
type VehicleDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	LicensePlate       *string    `json:"license_plate,omitempty"`
	AssignedOperatorID *uuid.UUID `json:"assigned_operator_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewWarehouseDTO builds a DTO from the persisted model.
func NewWarehouseDTO(warehouse *models.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:        warehouse.ID,
		Name:      warehouse.Name,
		Address:   warehouse.Address,
		CreatedAt: warehouse.CreatedAt,
		UpdatedAt: warehouse.UpdatedAt,
	}
}

// NewVehicleDTO builds a DTO from the persisted model.
func NewVehicleDTO(vehicle *models.Vehicle) *VehicleDTO {
	return &VehicleDTO{
		ID:                 vehicle.ID,
		Name:               vehicle.Name,
		LicensePlate:       vehicle.LicensePlate,
		AssignedOperatorID: vehicle.AssignedOperatorID,
		CreatedAt:          vehicle.CreatedAt,
		UpdatedAt:          vehicle.UpdatedAt,
	}
}
