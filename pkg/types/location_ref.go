package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fleetparts/fleetparts-backend/pkg/enums"
)

// LocationRef identifies one stock location: a warehouse or a vehicle,
// never both. The zero value is invalid.
type LocationRef struct {
	Type enums.LocationType `json:"type"`
	ID   uuid.UUID          `json:"id"`
}

// WarehouseRef builds a reference to a warehouse location.
func WarehouseRef(id uuid.UUID) LocationRef {
	return LocationRef{Type: enums.LocationTypeWarehouse, ID: id}
}

// VehicleRef builds a reference to a vehicle location.
func VehicleRef(id uuid.UUID) LocationRef {
	return LocationRef{Type: enums.LocationTypeVehicle, ID: id}
}

// Validate checks that the reference names a real location kind and id.
func (r LocationRef) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid location type %q", r.Type)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("location id is required")
	}
	return nil
}

// IsWarehouse reports whether the reference points at a warehouse.
func (r LocationRef) IsWarehouse() bool {
	return r.Type == enums.LocationTypeWarehouse
}

// String renders the reference for logs.
func (r LocationRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}
