package imports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for email import data access
type Repository interface {
	Create(ctx context.Context, record *EmailImport) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmailImport, error)
	List(ctx context.Context, companyID *uuid.UUID, limit int) ([]*EmailImport, error)
	LinkCompany(ctx context.Context, id, companyID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new email import repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, record *EmailImport) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*EmailImport, error) {
	var record EmailImport
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository) List(ctx context.Context, companyID *uuid.UUID, limit int) ([]*EmailImport, error) {
	query := r.db.WithContext(ctx).Model(&EmailImport{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []*EmailImport
	err := query.Order("received_at DESC").Find(&records).Error
	return records, err
}

func (r *gormRepository) LinkCompany(ctx context.Context, id, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&EmailImport{}).
		Where("id = ?", id).
		Update("company_id", companyID).Error
}
