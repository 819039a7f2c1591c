package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetparts/fleetparts-backend/api/middleware"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
)

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id in path").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// actorFromContext resolves the authenticated operator seeded by the auth
// middleware.
func actorFromContext(r *http.Request) (uuid.UUID, enums.MemberRole, error) {
	operatorID := middleware.OperatorIDFromContext(r.Context())
	if operatorID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "operator context missing")
	}
	id, err := uuid.Parse(operatorID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid operator id")
	}
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid actor role")
	}
	return id, role, nil
}

func locationFromQuery(r *http.Request) (types.LocationRef, error) {
	locationType, err := enums.ParseLocationType(r.URL.Query().Get("location_type"))
	if err != nil {
		return types.LocationRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location_type")
	}
	locationID, err := uuid.Parse(r.URL.Query().Get("location_id"))
	if err != nil {
		return types.LocationRef{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid location_id")
	}
	return types.LocationRef{Type: locationType, ID: locationID}, nil
}
