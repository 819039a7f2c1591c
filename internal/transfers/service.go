package transfers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/metrics"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox/payloads"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the authenticated caller for workflow decisions.
type Actor struct {
	OperatorID uuid.UUID
	Role       enums.MemberRole
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{OperatorID: a.OperatorID, Role: a.Role.String()}
}

// Service runs the transfer workflow: pending requests resolved exactly once
// by the operator snapshotted at request time.
type Service interface {
	Request(ctx context.Context, input RequestInput, actor Actor) (*TransferDTO, error)
	Accept(ctx context.Context, transferID uuid.UUID, actor Actor) (*TransferDTO, error)
	Reject(ctx context.Context, transferID uuid.UUID, actor Actor, reason string) (*TransferDTO, error)
	Get(ctx context.Context, transferID uuid.UUID) (*TransferDTO, error)
	Log(ctx context.Context, input LogInput) (*TransferListResult, error)
}

// RequestInput holds the validated payload to open a transfer.
type RequestInput struct {
	SourceEntryID uuid.UUID
	DestVehicleID uuid.UUID
	Quantity      int
	Notes         *string
}

// LogInput carries transfer-log filters.
type LogInput struct {
	TechnicianID *uuid.UUID
	Pagination   pagination.Params
}

type vehicleLoader interface {
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

type service struct {
	repo      *Repository
	entries   *ledger.Repository
	vehicles  vehicleLoader
	dbClient  *db.Client
	outboxSvc *outbox.Service
	workflow  *metrics.TransferMetrics
	stocking  config.StockingConfig
}

// NewService constructs a transfer workflow service instance.
func NewService(repo *Repository, entries *ledger.Repository, vehicles vehicleLoader, dbClient *db.Client, outboxSvc *outbox.Service, workflow *metrics.TransferMetrics, stocking config.StockingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transfer repository required")
	}
	if entries == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle loader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		repo:      repo,
		entries:   entries,
		vehicles:  vehicles,
		dbClient:  dbClient,
		outboxSvc: outboxSvc,
		workflow:  workflow,
		stocking:  stocking,
	}, nil
}

// Request opens a pending transfer. The availability check is advisory only:
// nothing is reserved, and acceptance re-checks under a lock. The vehicle's
// operator is snapshotted so later reassignment cannot move the decision.
func (s *service) Request(ctx context.Context, input RequestInput, actor Actor) (*TransferDTO, error) {
	if actor.OperatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated actor required")
	}
	if !actor.Role.CanRequestTransfers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot request transfers")
	}
	if input.SourceEntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source entry id is required")
	}
	if input.DestVehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination vehicle id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	source, err := s.entries.FindByID(ctx, input.SourceEntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "source stock entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source entry")
	}
	if source.WarehouseID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source entry must sit in a warehouse")
	}
	if source.Quantity < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "source entry holds less than requested").
			WithDetails(map[string]any{
				"available": source.Quantity,
				"requested": input.Quantity,
			})
	}

	vehicle, err := s.vehicles.FindVehicleByID(ctx, input.DestVehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "destination vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if vehicle.AssignedOperatorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination vehicle has no assigned operator")
	}

	transfer := &models.Transfer{
		ItemID:        source.ItemID,
		SourceEntryID: source.ID,
		DestVehicleID: vehicle.ID,
		Quantity:      input.Quantity,
		Status:        enums.TransferStatusPending,
		RequestedByID: actor.OperatorID,
		AssignedToID:  *vehicle.AssignedOperatorID,
		Notes:         input.Notes,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transfer")
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransferRequested,
			AggregateType: enums.AggregateTransfer,
			AggregateID:   transfer.ID,
			Actor:         actor.ref(),
			Version:       1,
			Data: payloads.TransferRequestedEvent{
				TransferID:    transfer.ID,
				ItemID:        transfer.ItemID,
				WarehouseID:   *source.WarehouseID,
				VehicleID:     transfer.DestVehicleID,
				AssignedToID:  transfer.AssignedToID,
				RequestedByID: transfer.RequestedByID,
				Quantity:      transfer.Quantity,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request transfer")
	}

	s.workflow.IncRequested(source.WarehouseID.String())
	return NewTransferDTO(transfer), nil
}

// Accept moves the quantity in one transaction: lock the transfer and both
// entry rows, re-check availability under the lock, debit the warehouse,
// credit the vehicle (creating its entry on first delivery) and mark the
// transfer accepted. Insufficient stock rolls everything back and leaves the
// transfer pending.
func (s *service) Accept(ctx context.Context, transferID uuid.UUID, actor Actor) (*TransferDTO, error) {
	var accepted *models.Transfer
	err := s.resolve(ctx, transferID, actor, func(tx *gorm.DB, transfer *models.Transfer) error {
		txEntries := s.entries.WithTx(tx)
		source, dest, err := s.lockEntries(ctx, txEntries, transfer)
		if err != nil {
			return err
		}
		if source.Quantity < transfer.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "source entry no longer holds the requested quantity").
				WithDetails(map[string]any{
					"available": source.Quantity,
					"requested": transfer.Quantity,
				})
		}

		source.Quantity -= transfer.Quantity
		if _, err := txEntries.Save(ctx, source); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: debit source entry")
		}
		if dest == nil {
			vehicleID := transfer.DestVehicleID
			dest = &models.StockEntry{
				ItemID:    transfer.ItemID,
				VehicleID: &vehicleID,
				Quantity:  transfer.Quantity,
				MinLevel:  s.stocking.DefaultMinLevel,
			}
			if _, err := txEntries.Create(ctx, dest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create destination entry")
			}
		} else {
			dest.Quantity += transfer.Quantity
			if _, err := txEntries.Save(ctx, dest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit destination entry")
			}
		}

		now := time.Now()
		transfer.Status = enums.TransferStatusAccepted
		transfer.DestEntryID = &dest.ID
		transfer.ProcessedAt = &now
		if _, err := s.repo.WithTx(tx).Save(ctx, transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save transfer")
		}

		accepted = transfer
		return s.outboxSvc.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransferAccepted,
			AggregateType: enums.AggregateTransfer,
			AggregateID:   transfer.ID,
			Actor:         actor.ref(),
			Version:       1,
			Data: payloads.TransferAcceptedEvent{
				TransferID:  transfer.ID,
				ItemID:      transfer.ItemID,
				WarehouseID: derefWarehouse(source),
				VehicleID:   transfer.DestVehicleID,
				DestEntryID: dest.ID,
				Quantity:    transfer.Quantity,
				ProcessedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.workflow.IncResolved("accepted")
	s.workflow.ObserveResolution("accepted", accepted.ProcessedAt.Sub(accepted.RequestedAt))
	return NewTransferDTO(accepted), nil
}

// Reject resolves the transfer without touching the ledger.
func (s *service) Reject(ctx context.Context, transferID uuid.UUID, actor Actor, reason string) (*TransferDTO, error) {
	var rejected *models.Transfer
	err := s.resolve(ctx, transferID, actor, func(tx *gorm.DB, transfer *models.Transfer) error {
		source, err := s.entries.WithTx(tx).FindByID(ctx, transfer.SourceEntryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source entry")
		}

		now := time.Now()
		transfer.Status = enums.TransferStatusRejected
		transfer.ProcessedAt = &now
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			transfer.RejectionReason = &trimmed
		}
		if _, err := s.repo.WithTx(tx).Save(ctx, transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save transfer")
		}

		rejected = transfer
		return s.outboxSvc.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransferRejected,
			AggregateType: enums.AggregateTransfer,
			AggregateID:   transfer.ID,
			Actor:         actor.ref(),
			Version:       1,
			Data: payloads.TransferRejectedEvent{
				TransferID:  transfer.ID,
				ItemID:      transfer.ItemID,
				WarehouseID: derefWarehouse(source),
				VehicleID:   transfer.DestVehicleID,
				Reason:      strings.TrimSpace(reason),
				ProcessedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.workflow.IncResolved("rejected")
	s.workflow.ObserveResolution("rejected", rejected.ProcessedAt.Sub(rejected.RequestedAt))
	return NewTransferDTO(rejected), nil
}

// Get loads a single transfer.
func (s *service) Get(ctx context.Context, transferID uuid.UUID) (*TransferDTO, error) {
	if transferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id is required")
	}
	transfer, err := s.repo.FindByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
	}
	return NewTransferDTO(transfer), nil
}

// Log returns a cursor page of resolved transfers, newest first.
func (s *service) Log(ctx context.Context, input LogInput) (*TransferListResult, error) {
	rows, err := s.repo.Log(ctx, LogQuery{
		TechnicianID: input.TechnicianID,
		Pagination:   input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: transfer log")
	}

	page, hasMore := pagination.Trim(rows, input.Pagination.Limit)
	result := &TransferListResult{
		Transfers: make([]TransferDTO, 0, len(page)),
		HasMore:   hasMore,
	}
	for i := range page {
		result.Transfers = append(result.Transfers, *NewTransferDTO(&page[i]))
	}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		if last.ProcessedAt != nil {
			result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: *last.ProcessedAt,
				ID:        last.ID,
			})
		}
	}
	return result, nil
}

// resolve runs the shared terminal-transition plumbing: lock the transfer
// row, verify the caller is the snapshotted operator, verify it is still
// pending, then run the outcome-specific mutation in the same transaction.
func (s *service) resolve(ctx context.Context, transferID uuid.UUID, actor Actor, fn func(tx *gorm.DB, transfer *models.Transfer) error) error {
	if transferID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer id is required")
	}
	if actor.OperatorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated actor required")
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		transfer, err := s.repo.WithTx(tx).FindForUpdate(ctx, transferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock transfer")
		}
		if transfer.AssignedToID != actor.OperatorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned operator may resolve this transfer")
		}
		if transfer.Status != enums.TransferStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer is already "+string(transfer.Status))
		}
		return fn(tx, transfer)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve transfer")
	}
	return nil
}

// lockEntries takes FOR UPDATE locks on the source entry and, when it
// already exists, the destination entry, in ascending id order so two
// concurrent accepts cannot deadlock. A nil destination means the vehicle has
// never held this item.
func (s *service) lockEntries(ctx context.Context, txEntries *ledger.Repository, transfer *models.Transfer) (*models.StockEntry, *models.StockEntry, error) {
	peek, err := txEntries.FindByItemAndLocation(ctx, transfer.ItemID, types.VehicleRef(transfer.DestVehicleID))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find destination entry")
	}

	lockSource := func() (*models.StockEntry, error) {
		source, err := txEntries.FindForUpdate(ctx, transfer.SourceEntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "source stock entry not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock source entry")
		}
		if source.WarehouseID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInvariant, "source entry is not a warehouse entry")
		}
		return source, nil
	}

	if peek == nil {
		source, err := lockSource()
		return source, nil, err
	}

	lockDest := func() (*models.StockEntry, error) {
		dest, err := txEntries.FindByItemAndVehicleForUpdate(ctx, transfer.ItemID, transfer.DestVehicleID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock destination entry")
		}
		return dest, nil
	}

	if bytes.Compare(peek.ID[:], transfer.SourceEntryID[:]) < 0 {
		dest, err := lockDest()
		if err != nil {
			return nil, nil, err
		}
		source, err := lockSource()
		return source, dest, err
	}
	source, err := lockSource()
	if err != nil {
		return nil, nil, err
	}
	dest, err := lockDest()
	return source, dest, err
}

func derefWarehouse(entry *models.StockEntry) uuid.UUID {
	if entry == nil || entry.WarehouseID == nil {
		return uuid.Nil
	}
	return *entry.WarehouseID
}
