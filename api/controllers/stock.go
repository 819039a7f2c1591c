package controllers

import (
	"net/http"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	"github.com/fleetparts/fleetparts-backend/api/validators"
	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
)

type createStockRequest struct {
	ItemID       uuid.UUID `json:"item_id" validate:"required"`
	LocationType string    `json:"location_type" validate:"required,oneof=warehouse vehicle"`
	LocationID   uuid.UUID `json:"location_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"min=0"`
	MinLevel     int       `json:"min_level" validate:"min=0"`
	MaxLevel     *int      `json:"max_level,omitempty"`
}

type adjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// itemStockResponse wraps the per-location entries of one item with
// its aggregate on-hand quantity.
type itemStockResponse struct {
	Entries []ledger.StockEntryDTO `json:"entries"`
	Total   int                    `json:"total"`
}

// StockCreate stocks an item at a location for the first time.
func StockCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload createStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationType, err := enums.ParseLocationType(payload.LocationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location_type"))
			return
		}
		operatorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateEntry(r.Context(), ledger.CreateEntryInput{
			ItemID:   payload.ItemID,
			Location: types.LocationRef{Type: locationType, ID: payload.LocationID},
			Quantity: payload.Quantity,
			MinLevel: payload.MinLevel,
			MaxLevel: payload.MaxLevel,
			Actor: &outbox.ActorRef{
				OperatorID: operatorID,
				Role:       role.String(),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// StockList answers the three read shapes of the ledger: one cell
// (item and location), one item across locations, or one location
// across items.
func StockList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hasLocation := r.URL.Query().Get("location_type") != "" || r.URL.Query().Get("location_id") != ""

		switch {
		case itemID != nil && hasLocation:
			location, err := locationFromQuery(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			entry, err := svc.StockAt(r.Context(), *itemID, location)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if entry == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item is not stocked at this location"))
				return
			}
			responses.WriteSuccess(w, entry)

		case itemID != nil:
			entries, err := svc.ListByItem(r.Context(), *itemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			total, err := svc.TotalQuantity(r.Context(), *itemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, itemStockResponse{Entries: entries, Total: total})

		case hasLocation:
			location, err := locationFromQuery(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			entries, err := svc.ListByLocation(r.Context(), location)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, entries)

		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id or location filters are required"))
		}
	}
}

// StockAdjust applies one signed delta to an entry.
func StockAdjust(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := pathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AdjustQuantity(r.Context(), ledger.AdjustQuantityInput{
			EntryID: entryID,
			Delta:   payload.Delta,
			Reason:  payload.Reason,
			Actor: &outbox.ActorRef{
				OperatorID: operatorID,
				Role:       role.String(),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// StockDelete removes a drained entry.
func StockDelete(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := pathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEntry(r.Context(), entryID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
