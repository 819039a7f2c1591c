package catalog

import (
	"time"

	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO represents the catalog item payload returned to clients.
type ItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	PartNumber    string          `json:"part_number"`
	CalloutNumber *string         `json:"callout_number,omitempty"`
	Category      string          `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Unit          string          `json:"unit"`
	Supplier      *string         `json:"supplier,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ItemListResult is a cursor page of catalog items.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

// NewItemDTO builds a DTO from the persisted model.
func NewItemDTO(item *models.Item) *ItemDTO {
	return &ItemDTO{
		ID:            item.ID,
		Name:          item.Name,
		PartNumber:    item.PartNumber,
		CalloutNumber: item.CalloutNumber,
		Category:      item.Category,
		UnitPrice:     item.UnitPrice,
		Unit:          item.Unit,
		Supplier:      item.Supplier,
		IsActive:      item.IsActive,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}
