package ledger

import (
	"time"

	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
)

// StockEntryDTO represents one (item, location) quantity record.
type StockEntryDTO struct {
	ID             uuid.UUID         `json:"id"`
	ItemID         uuid.UUID         `json:"item_id"`
	Location       types.LocationRef `json:"location"`
	Quantity       int               `json:"quantity"`
	MinLevel       int               `json:"min_level"`
	MaxLevel       *int              `json:"max_level,omitempty"`
	IsBelowMinimum bool              `json:"is_below_minimum"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewStockEntryDTO builds a DTO from the persisted model.
func NewStockEntryDTO(entry *models.StockEntry) *StockEntryDTO {
	return &StockEntryDTO{
		ID:             entry.ID,
		ItemID:         entry.ItemID,
		Location:       entry.Location(),
		Quantity:       entry.Quantity,
		MinLevel:       entry.MinLevel,
		MaxLevel:       entry.MaxLevel,
		IsBelowMinimum: entry.IsBelowMinimum(),
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
}
