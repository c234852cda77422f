package imports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
)

// CompanyLookup resolves a company by its registered name.
type CompanyLookup interface {
	GetByName(ctx context.Context, name string) (*companies.Company, error)
}

// IngestRequest carries one pre-fetched, pre-parsed email payload.
type IngestRequest struct {
	Source      string                 `json:"source" binding:"required"`
	FromAddress string                 `json:"from_address" binding:"required"`
	Subject     string                 `json:"subject" binding:"required"`
	ReceivedAt  time.Time              `json:"received_at"`
	CompanyName string                 `json:"company_name"`
	Body        map[string]interface{} `json:"body"`
	Summary     string                 `json:"summary"`
}

// Service ingests email payloads and links them to companies.
type Service struct {
	repo      Repository
	companies CompanyLookup
}

func NewService(repo Repository, companies CompanyLookup) *Service {
	return &Service{repo: repo, companies: companies}
}

// Ingest stores the payload. When the payload names a company that exists,
// the record is linked to it; an unknown name leaves the link empty for a
// later manual match.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*EmailImport, error) {
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, err
	}

	record := &EmailImport{
		Source:      req.Source,
		FromAddress: req.FromAddress,
		Subject:     req.Subject,
		ReceivedAt:  receivedAt,
		Body:        datatypes.JSON(body),
		Summary:     req.Summary,
	}

	if req.CompanyName != "" {
		company, err := s.companies.GetByName(ctx, req.CompanyName)
		if err != nil && !errors.Is(err, companies.ErrCompanyNotFound) {
			return nil, err
		}
		if company != nil {
			record.CompanyID = &company.ID
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Link attaches an unmatched import to a company.
func (s *Service) Link(ctx context.Context, importID, companyID uuid.UUID) error {
	return s.repo.LinkCompany(ctx, importID, companyID)
}

// List returns recent imports, optionally scoped to one company.
func (s *Service) List(ctx context.Context, companyID *uuid.UUID, limit int) ([]*EmailImport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, companyID, limit)
}
