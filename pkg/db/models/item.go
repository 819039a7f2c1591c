package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is the canonical part/supply definition. It says nothing about where
// stock physically sits; that is the stock entries' job.
type Item struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	PartNumber    string          `gorm:"column:part_number;not null;uniqueIndex:ux_items_part_number"`
	CalloutNumber *string         `gorm:"column:callout_number"`
	Category      string          `gorm:"column:category;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Unit          string          `gorm:"column:unit;not null"`
	Supplier      *string         `gorm:"column:supplier"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
