package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	"github.com/fleetparts/fleetparts-backend/api/validators"
	"github.com/fleetparts/fleetparts-backend/internal/catalog"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
)

type defineItemRequest struct {
	Name          string          `json:"name" validate:"required"`
	PartNumber    string          `json:"part_number" validate:"required"`
	CalloutNumber *string         `json:"callout_number,omitempty"`
	Category      string          `json:"category" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Unit          string          `json:"unit" validate:"required"`
	Supplier      *string         `json:"supplier,omitempty"`
}

type updateItemRequest struct {
	Name          *string          `json:"name,omitempty"`
	PartNumber    *string          `json:"part_number,omitempty"`
	CalloutNumber *string          `json:"callout_number,omitempty"`
	Category      *string          `json:"category,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	Supplier      *string          `json:"supplier,omitempty"`
}

// ItemCreate defines a new catalog item.
func ItemCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload defineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Define(r.Context(), catalog.DefineItemInput{
			Name:          payload.Name,
			PartNumber:    payload.PartNumber,
			CalloutNumber: payload.CalloutNumber,
			Category:      payload.Category,
			UnitPrice:     payload.UnitPrice,
			Unit:          payload.Unit,
			Supplier:      payload.Supplier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemUpdate mutates the item definition.
func ItemUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), itemID, catalog.UpdateItemInput{
			Name:          payload.Name,
			PartNumber:    payload.PartNumber,
			CalloutNumber: payload.CalloutNumber,
			Category:      payload.Category,
			UnitPrice:     payload.UnitPrice,
			Unit:          payload.Unit,
			Supplier:      payload.Supplier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemDeactivate retires the item from new activity.
func ItemDeactivate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Deactivate(r.Context(), itemID, &outbox.ActorRef{
			OperatorID: operatorID,
			Role:       role.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemReactivate flips the active flag back on.
func ItemReactivate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Reactivate(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemGet loads a single item.
func ItemGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemList returns a cursor page of items.
func ItemList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), catalog.ListItemsInput{
			IncludeInactive: includeInactive,
			Category:        validators.ParseQueryString(r, "category"),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
