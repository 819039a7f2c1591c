package controllers

import (
	"net/http"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	"github.com/fleetparts/fleetparts-backend/api/validators"
	"github.com/fleetparts/fleetparts-backend/internal/locations"
	"github.com/fleetparts/fleetparts-backend/internal/reports"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/shopspring/decimal"
)

type locationValueResponse struct {
	Location types.LocationRef `json:"location"`
	Value    decimal.Decimal   `json:"value"`
}

// LowStockReport lists entries under their minimum level.
func LowStockReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}
		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// LocationValueReport totals quantity times current unit price at one location.
func LocationValueReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location, err := locationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		value, err := svc.LocationValue(r.Context(), location)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, locationValueResponse{Location: location, Value: value})
	}
}

// TopLocationsReport ranks every known location by stock value.
func TopLocationsReport(svc reports.Service, dir locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := validators.ParseQueryInt(r, "n", 5, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouses, err := dir.ListWarehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicles, err := dir.ListVehicles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refs := make([]types.LocationRef, 0, len(warehouses)+len(vehicles))
		for _, warehouse := range warehouses {
			refs = append(refs, types.WarehouseRef(warehouse.ID))
		}
		for _, vehicle := range vehicles {
			refs = append(refs, types.VehicleRef(vehicle.ID))
		}

		rows, err := svc.TopLocationsByValue(r.Context(), refs, n)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ItemsReport groups the ledger by item with per-location breakdowns.
func ItemsReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.GroupedByItem(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}
