package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox/payloads"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the stock ledger: one entry per (item, location) pair,
// quantities mutated only through AdjustQuantity.
type Service interface {
	CreateEntry(ctx context.Context, input CreateEntryInput) (*StockEntryDTO, error)
	StockAt(ctx context.Context, itemID uuid.UUID, location types.LocationRef) (*StockEntryDTO, error)
	AdjustQuantity(ctx context.Context, input AdjustQuantityInput) (*StockEntryDTO, error)
	TotalQuantity(ctx context.Context, itemID uuid.UUID) (int, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]StockEntryDTO, error)
	ListByLocation(ctx context.Context, location types.LocationRef) ([]StockEntryDTO, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID, role enums.MemberRole) error
}

// CreateEntryInput holds the validated payload to stock an item at a location.
type CreateEntryInput struct {
	ItemID   uuid.UUID
	Location types.LocationRef
	Quantity int
	MinLevel int
	MaxLevel *int
	Actor    *outbox.ActorRef
}

// AdjustQuantityInput carries one signed quantity mutation.
type AdjustQuantityInput struct {
	EntryID uuid.UUID
	Delta   int
	Reason  string
	Actor   *outbox.ActorRef
}

type itemLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

type locationChecker interface {
	LocationExists(ctx context.Context, location types.LocationRef) (bool, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	items     itemLoader
	locations locationChecker
	outboxSvc *outbox.Service
}

// NewService constructs a ledger service instance.
func NewService(repo *Repository, dbClient *db.Client, items itemLoader, locations locationChecker, outboxSvc *outbox.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if items == nil {
		return nil, fmt.Errorf("item loader required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location checker required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		items:     items,
		locations: locations,
		outboxSvc: outboxSvc,
	}, nil
}

// CreateEntry stocks an item at a location. One entry per pair; a second
// create for the same pair conflicts instead of merging quantities.
func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*StockEntryDTO, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if err := input.Location.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if input.MinLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_level must be non-negative")
	}
	if input.MaxLevel != nil && *input.MaxLevel < input.MinLevel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_level must be at least min_level")
	}

	item, err := s.items.FindByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if !item.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is deactivated")
	}

	exists, err := s.locations.LocationExists(ctx, input.Location)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check location")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}

	entry := &models.StockEntry{
		ItemID:   input.ItemID,
		Quantity: input.Quantity,
		MinLevel: input.MinLevel,
		MaxLevel: input.MaxLevel,
	}
	if input.Location.IsWarehouse() {
		id := input.Location.ID
		entry.WarehouseID = &id
	} else {
		id := input.Location.ID
		entry.VehicleID = &id
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, entry); err != nil {
			if db.IsUniqueViolation(err, "ux_stock_entries_item_warehouse") ||
				db.IsUniqueViolation(err, "ux_stock_entries_item_vehicle") {
				return pkgerrors.New(pkgerrors.CodeConflict, "stock entry already exists for this item and location")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert stock entry")
		}
		if entry.Quantity > 0 {
			if err := s.emitAdjusted(ctx, tx, entry, entry.Quantity, "initial stock", input.Actor); err != nil {
				return err
			}
		}
		if entry.IsBelowMinimum() {
			if err := s.emitBelowMinimum(ctx, tx, entry, input.Actor); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock entry")
	}
	return NewStockEntryDTO(entry), nil
}

// StockAt looks up the entry for the pair. A nil DTO means the item has never
// been stocked at that location.
func (s *service) StockAt(ctx context.Context, itemID uuid.UUID, location types.LocationRef) (*StockEntryDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if err := location.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	entry, err := s.repo.FindByItemAndLocation(ctx, itemID, location)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find stock entry")
	}
	return NewStockEntryDTO(entry), nil
}

// AdjustQuantity applies one signed delta under a row lock. The mutation is
// all-or-nothing: a delta that would drive the quantity negative fails and
// leaves the row untouched.
func (s *service) AdjustQuantity(ctx context.Context, input AdjustQuantityInput) (*StockEntryDTO, error) {
	if input.EntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	var entry *models.StockEntry
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		locked, err := txRepo.FindForUpdate(ctx, input.EntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock stock entry")
		}

		newQuantity := locked.Quantity + input.Delta
		if newQuantity < 0 {
			return pkgerrors.New(pkgerrors.CodeInvariant, "adjustment would drive quantity negative").
				WithDetails(map[string]any{
					"entry_id": locked.ID,
					"quantity": locked.Quantity,
					"delta":    input.Delta,
				})
		}

		wasBelow := locked.IsBelowMinimum()
		locked.Quantity = newQuantity
		if _, err := txRepo.Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save stock entry")
		}
		if err := s.emitAdjusted(ctx, tx, locked, input.Delta, input.Reason, input.Actor); err != nil {
			return err
		}
		if !wasBelow && locked.IsBelowMinimum() {
			if err := s.emitBelowMinimum(ctx, tx, locked, input.Actor); err != nil {
				return err
			}
		}
		entry = locked
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust quantity")
	}
	return NewStockEntryDTO(entry), nil
}

// TotalQuantity sums the item's quantity across every location at read time.
// Nothing stores the total; transfers move quantity between entries, so the
// sum is invariant under them.
func (s *service) TotalQuantity(ctx context.Context, itemID uuid.UUID) (int, error) {
	if itemID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	total, err := s.repo.SumByItem(ctx, itemID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum quantities")
	}
	return total, nil
}

// ListByItem returns every entry holding the item.
func (s *service) ListByItem(ctx context.Context, itemID uuid.UUID) ([]StockEntryDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	entries, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock entries")
	}
	return toDTOs(entries), nil
}

// ListByLocation returns every entry sitting at the location.
func (s *service) ListByLocation(ctx context.Context, location types.LocationRef) ([]StockEntryDTO, error) {
	if err := location.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	entries, err := s.repo.ListByLocation(ctx, location)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock entries")
	}
	return toDTOs(entries), nil
}

// DeleteEntry removes an empty entry. Deleting a stocked entry would destroy
// quantity the ledger still accounts for, so it is refused.
func (s *service) DeleteEntry(ctx context.Context, entryID uuid.UUID, role enums.MemberRole) error {
	if entryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}
	if !role.CanManageStock() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot remove stock entries")
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock entry")
	}
	if entry.Quantity != 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stock entry still holds quantity")
	}
	if err := s.repo.Delete(ctx, entryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete stock entry")
	}
	return nil
}

func (s *service) emitAdjusted(ctx context.Context, tx *gorm.DB, entry *models.StockEntry, delta int, reason string, actor *outbox.ActorRef) error {
	location := entry.Location()
	return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockAdjusted,
		AggregateType: enums.AggregateStockEntry,
		AggregateID:   entry.ID,
		Actor:         actor,
		Version:       1,
		Data: payloads.StockAdjustedEvent{
			EntryID:      entry.ID,
			ItemID:       entry.ItemID,
			LocationType: location.Type,
			LocationID:   location.ID,
			Delta:        delta,
			NewQuantity:  entry.Quantity,
			Reason:       reason,
		},
	})
}

func (s *service) emitBelowMinimum(ctx context.Context, tx *gorm.DB, entry *models.StockEntry, actor *outbox.ActorRef) error {
	return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockBelowMinimum,
		AggregateType: enums.AggregateStockEntry,
		AggregateID:   entry.ID,
		Actor:         actor,
		Version:       1,
		Data: payloads.StockBelowMinimumEvent{
			EntryID:  entry.ID,
			ItemID:   entry.ItemID,
			Quantity: entry.Quantity,
			MinLevel: entry.MinLevel,
		},
	})
}

func toDTOs(entries []models.StockEntry) []StockEntryDTO {
	dtos := make([]StockEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, *NewStockEntryDTO(&entries[i]))
	}
	return dtos
}
