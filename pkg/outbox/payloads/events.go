package payloads

import (
	"time"

	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/google/uuid"
)

// TransferRequestedEvent signals a technician asked for stock from a warehouse.
type TransferRequestedEvent struct {
	TransferID    uuid.UUID `json:"transfer_id"`
	ItemID        uuid.UUID `json:"item_id"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	AssignedToID  uuid.UUID `json:"assigned_to_id"`
	RequestedByID uuid.UUID `json:"requested_by_id"`
	Quantity      int       `json:"quantity"`
}

// TransferAcceptedEvent is emitted when the assigned operator accepts and
// quantities have moved.
type TransferAcceptedEvent struct {
	TransferID  uuid.UUID `json:"transfer_id"`
	ItemID      uuid.UUID `json:"item_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	DestEntryID uuid.UUID `json:"dest_entry_id"`
	Quantity    int       `json:"quantity"`
	ProcessedAt time.Time `json:"processed_at"`
}

// TransferRejectedEvent is emitted when the assigned operator declines.
type TransferRejectedEvent struct {
	TransferID  uuid.UUID `json:"transfer_id"`
	ItemID      uuid.UUID `json:"item_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	Reason      string    `json:"reason,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// StockAdjustedEvent reports a direct quantity change on a ledger entry.
type StockAdjustedEvent struct {
	EntryID      uuid.UUID          `json:"entry_id"`
	ItemID       uuid.UUID          `json:"item_id"`
	LocationType enums.LocationType `json:"location_type"`
	LocationID   uuid.UUID          `json:"location_id"`
	Delta        int                `json:"delta"`
	NewQuantity  int                `json:"new_quantity"`
	Reason       string             `json:"reason,omitempty"`
}

// StockBelowMinimumEvent warns that an entry dropped under its minimum level.
type StockBelowMinimumEvent struct {
	EntryID  uuid.UUID `json:"entry_id"`
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
	MinLevel int       `json:"min_level"`
}

// ItemDeactivatedEvent marks a catalog item as retired from ordering.
type ItemDeactivatedEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	PartNumber string    `json:"part_number"`
}
