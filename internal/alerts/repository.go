package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows alert listings
type Filter struct {
	CompanyID *uuid.UUID
	Type      *string
	Resolved  *bool
	Limit     int
	Offset    int
}

// Repository defines the interface for alert data access
type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	List(ctx context.Context, filter Filter) ([]*Alert, error)
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy *uuid.UUID) (*Alert, error)
	HasOpenAlert(ctx context.Context, companyID uuid.UUID, alertType string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new alert repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, alert *Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	var alert Alert
	err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]*Alert, error) {
	query := r.db.WithContext(ctx).Model(&Alert{})

	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Resolved != nil {
		query = query.Where("is_resolved = ?", *filter.Resolved)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var alerts []*Alert
	err := query.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

func (r *gormRepository) Resolve(ctx context.Context, id uuid.UUID, resolvedBy *uuid.UUID) (*Alert, error) {
	var alert Alert
	err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return &alert, nil
	}

	now := time.Now()
	alert.IsResolved = true
	alert.ResolvedBy = resolvedBy
	alert.ResolvedAt = &now
	if err := r.db.WithContext(ctx).Save(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *gormRepository) HasOpenAlert(ctx context.Context, companyID uuid.UUID, alertType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Alert{}).
		Where("company_id = ? AND type = ? AND is_resolved = false", companyID, alertType).
		Count(&count).Error
	return count > 0, err
}
