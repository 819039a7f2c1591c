package reports

import (
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockRow is one ledger entry sitting under its minimum level.
type LowStockRow struct {
	EntryID    uuid.UUID         `json:"entry_id"`
	ItemID     uuid.UUID         `json:"item_id"`
	PartNumber string            `json:"part_number"`
	ItemName   string            `json:"item_name"`
	Location   types.LocationRef `json:"location"`
	Quantity   int               `json:"quantity"`
	MinLevel   int               `json:"min_level"`
	Deficit    int               `json:"deficit"`
}

// LocationValueRow pairs a location with the monetary value of its stock.
type LocationValueRow struct {
	Location types.LocationRef `json:"location"`
	Value    decimal.Decimal   `json:"value"`
}

// ItemStockGroup is one item definition with every entry that holds it.
type ItemStockGroup struct {
	ItemID     uuid.UUID        `json:"item_id"`
	PartNumber string           `json:"part_number"`
	ItemName   string           `json:"item_name"`
	IsActive   bool             `json:"is_active"`
	Total      int              `json:"total"`
	Entries    []ItemStockEntry `json:"entries"`
}

// ItemStockEntry is one location's share inside an item group.
type ItemStockEntry struct {
	EntryID  uuid.UUID         `json:"entry_id"`
	Location types.LocationRef `json:"location"`
	Quantity int               `json:"quantity"`
}
