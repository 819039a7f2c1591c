package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetparts/fleetparts-backend/pkg/enums"
)

// Transfer is a manager-initiated request to move stock from a warehouse
// entry to a vehicle. It holds no stock itself; the ledger only moves when
// the snapshotted operator accepts. Resolved transfers are kept forever as
// audit records.
type Transfer struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ItemID        uuid.UUID            `gorm:"column:item_id;type:uuid;not null"`
	SourceEntryID uuid.UUID            `gorm:"column:source_entry_id;type:uuid;not null"`
	DestVehicleID uuid.UUID            `gorm:"column:dest_vehicle_id;type:uuid;not null"`
	DestEntryID   *uuid.UUID           `gorm:"column:dest_entry_id;type:uuid"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	Status        enums.TransferStatus `gorm:"column:status;type:transfer_status_enum;not null;default:pending"`
	RequestedByID uuid.UUID            `gorm:"column:requested_by_id;type:uuid;not null"`
	// AssignedToID snapshots the vehicle's operator at request time; later
	// reassignment does not change who may decide this transfer.
	AssignedToID    uuid.UUID  `gorm:"column:assigned_to_id;type:uuid;not null"`
	Notes           *string    `gorm:"column:notes"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	RequestedAt     time.Time  `gorm:"column:requested_at;autoCreateTime"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
}
