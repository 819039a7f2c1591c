package controllers

import (
	"net/http"

	"github.com/fleetparts/fleetparts-backend/api/responses"
	"github.com/fleetparts/fleetparts-backend/api/validators"
	"github.com/fleetparts/fleetparts-backend/internal/transfers"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/google/uuid"
)

type createTransferRequest struct {
	SourceEntryID uuid.UUID `json:"source_entry_id" validate:"required"`
	DestVehicleID uuid.UUID `json:"dest_vehicle_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,min=1"`
	Notes         *string   `json:"notes,omitempty"`
}

type rejectTransferRequest struct {
	Reason string `json:"reason,omitempty"`
}

func transferActor(r *http.Request) (transfers.Actor, error) {
	operatorID, role, err := actorFromContext(r)
	if err != nil {
		return transfers.Actor{}, err
	}
	return transfers.Actor{OperatorID: operatorID, Role: role}, nil
}

// TransferCreate opens a pending transfer against a warehouse entry.
func TransferCreate(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		var payload createTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := transferActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Request(r.Context(), transfers.RequestInput{
			SourceEntryID: payload.SourceEntryID,
			DestVehicleID: payload.DestVehicleID,
			Quantity:      payload.Quantity,
			Notes:         payload.Notes,
		}, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

// TransferAccept moves the stock and closes the transfer.
func TransferAccept(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := transferActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Accept(r.Context(), transferID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// TransferReject closes the transfer without touching the ledger.
func TransferReject(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := transferActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Reject(r.Context(), transferID, actor, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// TransferDetail loads a single transfer.
func TransferDetail(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transfer, err := svc.Get(r.Context(), transferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// TransferLog pages resolved transfers, newest resolution first.
func TransferLog(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technicianID, err := validators.ParseQueryUUID(r, "technician_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Log(r.Context(), transfers.LogInput{
			TechnicianID: technicianID,
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
