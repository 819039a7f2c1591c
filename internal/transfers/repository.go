package transfers

import (
	"context"

	"github.com/fleetparts/fleetparts-backend/internal/repo"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires transfer persistence.
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

// Create inserts a new transfer row.
func (r *Repository) Create(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	if err := r.DB(ctx).Create(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

// Save persists the full transfer row.
func (r *Repository) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	if err := r.DB(ctx).Save(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

// FindByID loads the transfer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.DB(ctx).First(&transfer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

// FindForUpdate loads the transfer under a FOR UPDATE row lock so the
// pending check holds until commit.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transfer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

// LogQuery filters the resolved-transfer log.
type LogQuery struct {
	TechnicianID *uuid.UUID
	Pagination   pagination.Params
}

// Log returns resolved transfers, most recently processed first. Fetches one
// row past the limit so the caller can detect another page.
func (r *Repository) Log(ctx context.Context, query LogQuery) ([]models.Transfer, error) {
	tx := r.DB(ctx).
		Where("status IN ?", []enums.TransferStatus{
			enums.TransferStatusAccepted,
			enums.TransferStatusRejected,
		})
	if query.TechnicianID != nil {
		tx = tx.Where("assigned_to_id = ?", *query.TechnicianID)
	}
	if query.Pagination.Cursor != "" {
		cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
		if err != nil {
			return nil, err
		}
		tx = tx.Where("(processed_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var transfers []models.Transfer
	if err := tx.
		Order("processed_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// CountByStatus reports how many transfers sit in the given state.
func (r *Repository) CountByStatus(ctx context.Context, status enums.TransferStatus) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Transfer{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
