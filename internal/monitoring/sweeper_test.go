package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

type stubStaleLister struct {
	companies []*companies.Company
	cutoffs   map[workflows.StatusCode]time.Time
}

func (s *stubStaleLister) ListStale(ctx context.Context, statuses []workflows.StatusCode, before time.Time) ([]*companies.Company, error) {
	var out []*companies.Company
	for _, company := range s.companies {
		for _, code := range statuses {
			if company.CurrentStatus == code && company.StatusChangedAt.Before(before) {
				out = append(out, company)
			}
		}
	}
	if s.cutoffs == nil {
		s.cutoffs = make(map[workflows.StatusCode]time.Time)
	}
	for _, code := range statuses {
		s.cutoffs[code] = before
	}
	return out, nil
}

type stubAlertStore struct {
	created []*alerts.Alert
	open    map[uuid.UUID]bool
}

func (s *stubAlertStore) Create(ctx context.Context, alert *alerts.Alert) error {
	s.created = append(s.created, alert)
	return nil
}

func (s *stubAlertStore) HasOpenAlert(ctx context.Context, companyID uuid.UUID, alertType string) (bool, error) {
	return s.open[companyID], nil
}

type countingNotifier struct {
	alerts []*alerts.Alert
}

func (n *countingNotifier) NotifyAlert(alert *alerts.Alert) {
	n.alerts = append(n.alerts, alert)
}

func TestSweepFlagsStuckCompanies(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	stuck := &companies.Company{
		ID:              uuid.New(),
		Name:            "Aoba Denki",
		CurrentStatus:   workflows.StatusUnderConsideration,
		StatusChangedAt: now.Add(-40 * 24 * time.Hour),
	}
	fresh := &companies.Company{
		ID:              uuid.New(),
		Name:            "Hinode Unyu",
		CurrentStatus:   workflows.StatusUnderConsideration,
		StatusChangedAt: now.Add(-2 * 24 * time.Hour),
	}

	lister := &stubStaleLister{companies: []*companies.Company{stuck, fresh}}
	store := &stubAlertStore{open: map[uuid.UUID]bool{}}
	notifier := &countingNotifier{}

	sweeper := NewSweeper(lister, store, notifier, "")
	sweeper.now = func() time.Time { return now }

	assert.NoError(t, sweeper.Sweep(context.Background()))

	assert.Len(t, store.created, 1)
	alert := store.created[0]
	assert.Equal(t, stuck.ID, alert.CompanyID)
	assert.Equal(t, alerts.TypeStaleStatus, alert.Type)
	assert.Equal(t, alerts.SeverityMedium, alert.Severity)
	assert.Contains(t, alert.Description, "Aoba Denki")
	assert.Len(t, notifier.alerts, 1)
}

func TestSweepRespectsOpenAlertCooldown(t *testing.T) {
	now := time.Now()
	stuck := &companies.Company{
		ID:              uuid.New(),
		Name:            "Aoba Denki",
		CurrentStatus:   workflows.StatusClaimSubmitted,
		StatusChangedAt: now.Add(-90 * 24 * time.Hour),
	}

	lister := &stubStaleLister{companies: []*companies.Company{stuck}}
	store := &stubAlertStore{open: map[uuid.UUID]bool{stuck.ID: true}}

	sweeper := NewSweeper(lister, store, nil, "")
	assert.NoError(t, sweeper.Sweep(context.Background()))
	assert.Empty(t, store.created)
}

func TestSweepSkipsUnsweptPhases(t *testing.T) {
	now := time.Now()
	// Terminal and completed companies never get stale alerts.
	done := &companies.Company{
		ID:              uuid.New(),
		CurrentStatus:   workflows.StatusRenewalPending,
		StatusChangedAt: now.Add(-365 * 24 * time.Hour),
	}
	cancelled := &companies.Company{
		ID:              uuid.New(),
		CurrentStatus:   workflows.StatusCancelled,
		StatusChangedAt: now.Add(-365 * 24 * time.Hour),
	}

	lister := &stubStaleLister{companies: []*companies.Company{done, cancelled}}
	store := &stubAlertStore{open: map[uuid.UUID]bool{}}

	sweeper := NewSweeper(lister, store, nil, "")
	assert.NoError(t, sweeper.Sweep(context.Background()))
	assert.Empty(t, store.created)

	// No sweep query ever targeted the completed or special phases.
	for _, code := range workflows.StatusesInPhase(workflows.PhaseCompleted) {
		_, queried := lister.cutoffs[code]
		assert.False(t, queried)
	}
	for _, code := range workflows.StatusesInPhase(workflows.PhaseSpecial) {
		_, queried := lister.cutoffs[code]
		assert.False(t, queried)
	}
}
