package companies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// Requests

type CreateCompanyRequest struct {
	Name          string               `json:"name" binding:"required"`
	NameKana      string               `json:"name_kana"`
	ContactName   string               `json:"contact_name"`
	ContactEmail  string               `json:"contact_email"`
	ContactPhone  string               `json:"contact_phone"`
	Address       string               `json:"address"`
	EmployeeCount int                  `json:"employee_count"`
	Notes         string               `json:"notes"`
	InitialStatus workflows.StatusCode `json:"initial_status"`
	CreatedBy     *uuid.UUID           `json:"-"`
}

type UpdateCompanyRequest struct {
	Name          *string    `json:"name"`
	NameKana      *string    `json:"name_kana"`
	ContactName   *string    `json:"contact_name"`
	ContactEmail  *string    `json:"contact_email"`
	ContactPhone  *string    `json:"contact_phone"`
	Address       *string    `json:"address"`
	EmployeeCount *int       `json:"employee_count"`
	Notes         *string    `json:"notes"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
}

type ChangeStatusRequest struct {
	NewStatus workflows.StatusCode
	Reason    string
	ChangedBy *uuid.UUID
	Force     bool
}

// TransitionResult reports a committed status change.
type TransitionResult struct {
	CompanyID      uuid.UUID            `json:"company_id"`
	PreviousStatus workflows.StatusCode `json:"previous_status"`
	NewStatus      workflows.StatusCode `json:"new_status"`
	ChangedAt      time.Time            `json:"changed_at"`
	Alert          *alerts.Alert        `json:"alert,omitempty"`
}

// StatusView is the read-only status payload for one company.
type StatusView struct {
	CompanyID       uuid.UUID              `json:"company_id"`
	CurrentStatus   workflows.StatusInfo   `json:"current_status"`
	StatusChangedAt time.Time              `json:"status_changed_at"`
	AllowedStatuses []workflows.StatusInfo `json:"allowed_statuses"`
	Catalog         []workflows.StatusInfo `json:"catalog"`
}

// TransitionNotifier receives committed transitions and alerts. Implementations
// must not be invoked inside the transaction; the service calls them after
// commit.
type TransitionNotifier interface {
	NotifyStatusChanged(company *Company, result *TransitionResult)
	NotifyAlert(alert *alerts.Alert)
}

// Service interface
type CompanyService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*Company, error)
	ListCompanies(ctx context.Context, filter Filter) ([]*Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*Company, error)
	CompanyStatus(ctx context.Context, id uuid.UUID) (*StatusView, error)
	ListHistory(ctx context.Context, id uuid.UUID) ([]*StatusHistory, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*TransitionResult, *workflows.Rejection, error)
}

// errRejected aborts the transition transaction when validation fails. The
// rejection itself travels back through the closure, not the error.
var errRejected = errors.New("transition rejected")

type companyService struct {
	repo         Repository
	stateMachine *workflows.StateMachine
	notifier     TransitionNotifier
}

func NewCompanyService(repo Repository, notifier TransitionNotifier) CompanyService {
	return &companyService{
		repo:         repo,
		stateMachine: workflows.NewStateMachine(),
		notifier:     notifier,
	}
}

func (s *companyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	status := req.InitialStatus
	if status == "" {
		status = workflows.StatusUntouched
	}
	if !workflows.IsValidStatus(status) {
		return nil, &workflows.UnknownStatusError{Code: status}
	}

	now := time.Now()
	company := &Company{
		Name:            req.Name,
		NameKana:        req.NameKana,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Address:         req.Address,
		EmployeeCount:   req.EmployeeCount,
		Notes:           req.Notes,
		CurrentStatus:   status,
		StatusChangedAt: now,
		AssignedTo:      req.CreatedBy,
	}

	// Null-from history row marks the company's entry into the workflow.
	initial := &StatusHistory{
		FromStatus:   nil,
		ToStatus:     status,
		ChangedBy:    req.CreatedBy,
		ChangeReason: "company created",
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, company, initial); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

func (s *companyService) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *companyService) ListCompanies(ctx context.Context, filter Filter) ([]*Company, error) {
	return s.repo.List(ctx, filter)
}

func (s *companyService) UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.NameKana != nil {
		company.NameKana = *req.NameKana
	}
	if req.ContactName != nil {
		company.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		company.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		company.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.EmployeeCount != nil {
		company.EmployeeCount = *req.EmployeeCount
	}
	if req.Notes != nil {
		company.Notes = *req.Notes
	}
	if req.AssignedTo != nil {
		company.AssignedTo = req.AssignedTo
	}
	company.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) CompanyStatus(ctx context.Context, id uuid.UUID) (*StatusView, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := workflows.Describe(company.CurrentStatus)
	if err != nil {
		return nil, err
	}
	allowedCodes, err := s.stateMachine.AllowedNextStatuses(company.CurrentStatus)
	if err != nil {
		return nil, err
	}

	allowed := make([]workflows.StatusInfo, 0, len(allowedCodes))
	for _, code := range allowedCodes {
		info, err := workflows.Describe(code)
		if err != nil {
			return nil, err
		}
		allowed = append(allowed, info)
	}

	return &StatusView{
		CompanyID:       company.ID,
		CurrentStatus:   current,
		StatusChangedAt: company.StatusChangedAt,
		AllowedStatuses: allowed,
		Catalog:         workflows.AllStatuses(),
	}, nil
}

func (s *companyService) ListHistory(ctx context.Context, id uuid.UUID) ([]*StatusHistory, error) {
	return s.repo.ListHistory(ctx, id)
}

// ChangeStatus runs the whole transition as one atomic unit: validate against
// the row-locked current status, mutate the company, append the history row,
// and raise the alert for special statuses. A rejection leaves no trace.
func (s *companyService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*TransitionResult, *workflows.Rejection, error) {
	var (
		rejection *workflows.Rejection
		result    *TransitionResult
		company   *Company
	)

	err := s.repo.Transition(ctx, id, func(c *Company) (*StatusHistory, *alerts.Alert, error) {
		if rej := s.stateMachine.Validate(c.CurrentStatus, req.NewStatus, req.Force); rej != nil {
			rejection = rej
			return nil, nil, errRejected
		}

		previous := c.CurrentStatus
		now := time.Now()
		c.CurrentStatus = req.NewStatus
		c.StatusChangedAt = now
		c.UpdatedAt = now

		metadata, _ := json.Marshal(map[string]interface{}{"force": req.Force})
		history := &StatusHistory{
			FromStatus:   &previous,
			ToStatus:     req.NewStatus,
			ChangedBy:    req.ChangedBy,
			ChangeReason: req.Reason,
			Metadata:     datatypes.JSON(metadata),
			CreatedAt:    now,
		}

		alert := alerts.MaybeEmit(c.ID, req.NewStatus, req.Reason)

		company = c
		result = &TransitionResult{
			CompanyID:      c.ID,
			PreviousStatus: previous,
			NewStatus:      req.NewStatus,
			ChangedAt:      now,
			Alert:          alert,
		}
		return history, alert, nil
	})

	if errors.Is(err, errRejected) {
		return nil, rejection, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyStatusChanged(company, result)
		if result.Alert != nil {
			s.notifier.NotifyAlert(result.Alert)
		}
	}
	return result, nil, nil
}
