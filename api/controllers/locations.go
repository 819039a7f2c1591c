package controllers

import (
	"net/http"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	"github.com/fleetparts/fleetparts-backend/api/validators"
	"github.com/fleetparts/fleetparts-backend/internal/locations"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/google/uuid"
)

type createWarehouseRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address,omitempty"`
}

type createVehicleRequest struct {
	Name               string     `json:"name" validate:"required"`
	LicensePlate       *string    `json:"license_plate,omitempty"`
	AssignedOperatorID *uuid.UUID `json:"assigned_operator_id,omitempty"`
}

type assignOperatorRequest struct {
	OperatorID *uuid.UUID `json:"operator_id"`
}

// WarehouseCreate registers a warehouse.
func WarehouseCreate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "locations service unavailable"))
			return
		}

		var payload createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.CreateWarehouse(r.Context(), locations.CreateWarehouseInput{
			Name:    payload.Name,
			Address: payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

// VehicleCreate registers a service vehicle.
func VehicleCreate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.CreateVehicle(r.Context(), locations.CreateVehicleInput{
			Name:               payload.Name,
			LicensePlate:       payload.LicensePlate,
			AssignedOperatorID: payload.AssignedOperatorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// VehicleAssignOperator sets or clears the vehicle's operator. A null
// operator_id unassigns.
func VehicleAssignOperator(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignOperatorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var vehicle *locations.VehicleDTO
		if payload.OperatorID == nil {
			vehicle, err = svc.UnassignOperator(r.Context(), vehicleID)
		} else {
			vehicle, err = svc.AssignOperator(r.Context(), vehicleID, *payload.OperatorID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

// WarehouseList returns every warehouse.
func WarehouseList(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouses, err := svc.ListWarehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouses)
	}
}

// VehicleList returns every vehicle.
func VehicleList(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := svc.ListVehicles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicles)
	}
}

// WarehouseDelete removes a warehouse and its ledger entries.
func WarehouseDelete(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := pathUUID(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteWarehouse(r.Context(), warehouseID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// VehicleDelete removes a vehicle and its ledger entries.
func VehicleDelete(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := pathUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteVehicle(r.Context(), vehicleID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
