package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a mobile stock location. The assigned operator is the technician
// allowed to resolve transfers destined for this vehicle; identity itself
// lives in the external identity service, so only the opaque user id is kept.
type Vehicle struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name               string     `gorm:"column:name;not null"`
	LicensePlate       *string    `gorm:"column:license_plate"`
	AssignedOperatorID *uuid.UUID `gorm:"column:assigned_operator_id;type:uuid"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
