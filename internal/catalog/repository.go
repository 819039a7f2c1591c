package catalog

import (
	"context"

	"github.com/fleetparts/fleetparts-backend/internal/repo"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires catalog item persistence.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// FindByID loads the item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByPartNumber loads the item carrying the given part number.
func (r *Repository) FindByPartNumber(ctx context.Context, partNumber string) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).First(&item, "part_number = ?", partNumber).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves the full item row.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.DB(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ListQuery carries filters for cursor-paged item listings.
type ListQuery struct {
	IncludeInactive bool
	Category        *string
	Pagination      pagination.Params
}

// List returns items ordered by (created_at, id) with one buffered extra row.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Item, error) {
	tx := r.DB(ctx).Model(&models.Item{})
	if !query.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	if query.Category != nil {
		tx = tx.Where("category = ?", *query.Category)
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.Item
	if err := tx.Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
