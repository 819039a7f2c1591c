package transfers

import (
	"time"

	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/google/uuid"
)

// TransferDTO is the API shape of a transfer request.
type TransferDTO struct {
	ID              uuid.UUID            `json:"id"`
	ItemID          uuid.UUID            `json:"item_id"`
	SourceEntryID   uuid.UUID            `json:"source_entry_id"`
	DestVehicleID   uuid.UUID            `json:"dest_vehicle_id"`
	DestEntryID     *uuid.UUID           `json:"dest_entry_id,omitempty"`
	Quantity        int                  `json:"quantity"`
	Status          enums.TransferStatus `json:"status"`
	RequestedByID   uuid.UUID            `json:"requested_by_id"`
	AssignedToID    uuid.UUID            `json:"assigned_to_id"`
	Notes           *string              `json:"notes,omitempty"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	RequestedAt     time.Time            `json:"requested_at"`
	ProcessedAt     *time.Time           `json:"processed_at,omitempty"`
}

// TransferListResult is one cursor page of the transfer log.
type TransferListResult struct {
	Transfers  []TransferDTO `json:"transfers"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// NewTransferDTO builds a DTO from the persisted model.
func NewTransferDTO(transfer *models.Transfer) *TransferDTO {
	return &TransferDTO{
		ID:              transfer.ID,
		ItemID:          transfer.ItemID,
		SourceEntryID:   transfer.SourceEntryID,
		DestVehicleID:   transfer.DestVehicleID,
		DestEntryID:     transfer.DestEntryID,
		Quantity:        transfer.Quantity,
		Status:          transfer.Status,
		RequestedByID:   transfer.RequestedByID,
		AssignedToID:    transfer.AssignedToID,
		Notes:           transfer.Notes,
		RejectionReason: transfer.RejectionReason,
		RequestedAt:     transfer.RequestedAt,
		ProcessedAt:     transfer.ProcessedAt,
	}
}
