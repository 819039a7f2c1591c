package auth

import (
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID        uuid.UUID
	Role              enums.MemberRole
	AssignedVehicleID *uuid.UUID
	JTI               string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	OperatorID        uuid.UUID        `json:"operator_id"`
	Role              enums.MemberRole `json:"role"`
	AssignedVehicleID *uuid.UUID       `json:"assigned_vehicle_id,omitempty"`
	jwt.RegisteredClaims
}
