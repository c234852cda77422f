package companies

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// ErrCompanyNotFound is returned when a company id does not exist.
var ErrCompanyNotFound = errors.New("company not found")

// Filter narrows company listings
type Filter struct {
	Status     *workflows.StatusCode
	Phase      *workflows.Phase
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// TransitionFunc mutates a freshly locked company row. It returns the history
// row to append and the alert to raise (nil for none). Returning an error
// rolls the whole transaction back.
type TransitionFunc func(company *Company) (*StatusHistory, *alerts.Alert, error)

// Repository defines the interface for company data access
type Repository interface {
	Create(ctx context.Context, company *Company, initial *StatusHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByName(ctx context.Context, name string) (*Company, error)
	List(ctx context.Context, filter Filter) ([]*Company, error)

	// Update persists profile fields only. The status columns belong to
	// Transition; a stale read-modify-write must never write them back.
	Update(ctx context.Context, company *Company) error
	ListHistory(ctx context.Context, companyID uuid.UUID) ([]*StatusHistory, error)
	ListStale(ctx context.Context, statuses []workflows.StatusCode, before time.Time) ([]*Company, error)

	// Transition loads the company under a row lock, applies fn, and persists
	// the company update, history row, and optional alert in one transaction.
	Transition(ctx context.Context, companyID uuid.UUID, fn TransitionFunc) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new company repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, company *Company, initial *StatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		initial.CompanyID = company.ID
		return tx.Create(initial).Error
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) GetByName(ctx context.Context, name string) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]*Company, error) {
	query := r.db.WithContext(ctx).Model(&Company{})

	if filter.Status != nil {
		query = query.Where("current_status = ?", *filter.Status)
	}
	if filter.Phase != nil {
		query = query.Where("current_status IN ?", workflows.StatusesInPhase(*filter.Phase))
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var companies []*Company
	err := query.Order("updated_at DESC").Find(&companies).Error
	return companies, err
}

func (r *gormRepository) Update(ctx context.Context, company *Company) error {
	return r.db.WithContext(ctx).
		Omit("current_status", "status_changed_at").
		Save(company).Error
}

func (r *gormRepository) ListHistory(ctx context.Context, companyID uuid.UUID) ([]*StatusHistory, error) {
	var history []*StatusHistory
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&history).Error
	return history, err
}

func (r *gormRepository) ListStale(ctx context.Context, statuses []workflows.StatusCode, before time.Time) ([]*Company, error) {
	var companies []*Company
	err := r.db.WithContext(ctx).
		Where("current_status IN ? AND status_changed_at < ?", statuses, before).
		Find(&companies).Error
	return companies, err
}

func (r *gormRepository) Transition(ctx context.Context, companyID uuid.UUID, fn TransitionFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company Company
		// Row lock so the validator's read and the write cannot interleave
		// with a concurrent transition on the same company.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&company, "id = ?", companyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompanyNotFound
		}
		if err != nil {
			return err
		}

		history, alert, err := fn(&company)
		if err != nil {
			return err
		}

		if err := tx.Save(&company).Error; err != nil {
			return err
		}
		history.CompanyID = company.ID
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		if alert != nil {
			if err := tx.Create(alert).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
