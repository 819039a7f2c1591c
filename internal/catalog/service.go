package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox/payloads"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog item management operations.
type Service interface {
	Define(ctx context.Context, input DefineItemInput) (*ItemDTO, error)
	Update(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Deactivate(ctx context.Context, itemID uuid.UUID, actor *outbox.ActorRef) (*ItemDTO, error)
	Reactivate(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error)
	Get(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, input ListItemsInput) (*ItemListResult, error)
}

// DefineItemInput holds the validated payload to define an item.
type DefineItemInput struct {
	Name          string
	PartNumber    string
	CalloutNumber *string
	Category      string
	UnitPrice     decimal.Decimal
	Unit          string
	Supplier      *string
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name          *string
	PartNumber    *string
	CalloutNumber *string
	Category      *string
	UnitPrice     *decimal.Decimal
	Unit          *string
	Supplier      *string
}

// ListItemsInput carries listing filters.
type ListItemsInput struct {
	IncludeInactive bool
	Category        *string
	Pagination      pagination.Params
}

type entryCounter interface {
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	entries   entryCounter
	outboxSvc *outbox.Service
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, entries entryCounter, outboxSvc *outbox.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if entries == nil {
		return nil, fmt.Errorf("stock entry counter required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		entries:   entries,
		outboxSvc: outboxSvc,
	}, nil
}

// Define creates an active catalog item.
func (s *service) Define(ctx context.Context, input DefineItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	partNumber := strings.TrimSpace(input.PartNumber)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if partNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part_number is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
	}
	if strings.TrimSpace(input.Unit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}

	item := &models.Item{
		Name:          name,
		PartNumber:    partNumber,
		CalloutNumber: input.CalloutNumber,
		Category:      strings.TrimSpace(input.Category),
		UnitPrice:     input.UnitPrice,
		Unit:          strings.TrimSpace(input.Unit),
		Supplier:      input.Supplier,
		IsActive:      true,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_items_part_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "part number already defined")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return NewItemDTO(created), nil
}

// Update mutates the item definition. The part number is frozen once stock
// entries reference the item; quantities elsewhere identify parts by it.
func (s *service) Update(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if input.PartNumber != nil {
		newPartNumber := strings.TrimSpace(*input.PartNumber)
		if newPartNumber == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "part_number cannot be blank")
		}
		if newPartNumber != item.PartNumber {
			count, err := s.entries.CountByItem(ctx, itemID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock entries")
			}
			if count > 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "part_number cannot change while stock entries exist")
			}
			item.PartNumber = newPartNumber
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		item.Name = name
	}
	if input.CalloutNumber != nil {
		item.CalloutNumber = input.CalloutNumber
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Supplier != nil {
		item.Supplier = input.Supplier
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_items_part_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "part number already defined")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return NewItemDTO(updated), nil
}

// Deactivate flags the item inactive. Historical ledger entries and transfers
// keep referencing it, so the row is never deleted.
func (s *service) Deactivate(ctx context.Context, itemID uuid.UUID, actor *outbox.ActorRef) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return NewItemDTO(item), nil
	}

	item.IsActive = false
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Update(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate item")
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemDeactivated,
			AggregateType: enums.AggregateItem,
			AggregateID:   item.ID,
			Actor:         actor,
			Version:       1,
			Data: payloads.ItemDeactivatedEvent{
				ItemID:     item.ID,
				PartNumber: item.PartNumber,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate item")
	}
	return NewItemDTO(item), nil
}

// Reactivate flips the active flag back on.
func (s *service) Reactivate(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsActive {
		return NewItemDTO(item), nil
	}
	item.IsActive = true
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reactivate item")
	}
	return NewItemDTO(updated), nil
}

// Get loads a single item.
func (s *service) Get(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(item), nil
}

// List returns a cursor page of items, active-only unless asked otherwise.
func (s *service) List(ctx context.Context, input ListItemsInput) (*ItemListResult, error) {
	rows, err := s.repo.List(ctx, ListQuery{
		IncludeInactive: input.IncludeInactive,
		Category:        input.Category,
		Pagination:      input.Pagination,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	page, hasMore := pagination.Trim(rows, input.Pagination.Limit)
	result := &ItemListResult{
		Items:   make([]ItemDTO, 0, len(page)),
		HasMore: hasMore,
	}
	for i := range page {
		result.Items = append(result.Items, *NewItemDTO(&page[i]))
	}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) loadItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
