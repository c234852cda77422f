package monitoring

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// AlertNotifier pushes newly created alerts to subscribers.
type AlertNotifier interface {
	NotifyAlert(alert *alerts.Alert)
}

// StaleLister is the slice of the company repository the sweeper needs.
type StaleLister interface {
	ListStale(ctx context.Context, statuses []workflows.StatusCode, before time.Time) ([]*companies.Company, error)
}

// AlertStore is the slice of the alert repository the sweeper needs.
type AlertStore interface {
	Create(ctx context.Context, alert *alerts.Alert) error
	HasOpenAlert(ctx context.Context, companyID uuid.UUID, alertType string) (bool, error)
}

// DefaultThresholds is how long a company may sit in one status, per phase,
// before the sweeper flags it. Terminal and completed phases are not swept.
var DefaultThresholds = map[workflows.Phase]time.Duration{
	workflows.PhaseSales:            14 * 24 * time.Hour,
	workflows.PhaseProposal:         21 * 24 * time.Hour,
	workflows.PhaseContract:         14 * 24 * time.Hour,
	workflows.PhaseCheckup:          30 * 24 * time.Hour,
	workflows.PhaseSecondaryCheckup: 30 * 24 * time.Hour,
	workflows.PhaseBilling:          45 * 24 * time.Hour,
}

// Sweeper periodically scans for companies stuck in one status past the
// per-phase threshold and raises a stale_status alert for each. An open
// stale_status alert on a company suppresses re-flagging until resolved.
type Sweeper struct {
	companies  StaleLister
	alertRepo  AlertStore
	notifier   AlertNotifier
	thresholds map[workflows.Phase]time.Duration
	schedule   string
	cron       *cron.Cron
	now        func() time.Time
}

// NewSweeper creates a sweeper. notifier may be nil.
func NewSweeper(companyRepo StaleLister, alertRepo AlertStore, notifier AlertNotifier, schedule string) *Sweeper {
	if schedule == "" {
		schedule = "0 * * * *" // hourly
	}
	return &Sweeper{
		companies:  companyRepo,
		alertRepo:  alertRepo,
		notifier:   notifier,
		thresholds: DefaultThresholds,
		schedule:   schedule,
		now:        time.Now,
	}
}

// Start schedules the sweep and begins running it.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			log.Printf("stale-status sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep runs one pass over all swept phases.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()

	for phase, threshold := range s.thresholds {
		stale, err := s.companies.ListStale(ctx, workflows.StatusesInPhase(phase), now.Add(-threshold))
		if err != nil {
			return fmt.Errorf("failed to list stale companies in phase %s: %w", phase, err)
		}

		for _, company := range stale {
			open, err := s.alertRepo.HasOpenAlert(ctx, company.ID, alerts.TypeStaleStatus)
			if err != nil {
				log.Printf("failed to check open alerts for company %s: %v", company.ID, err)
				continue
			}
			if open {
				continue
			}

			info, err := workflows.Describe(company.CurrentStatus)
			if err != nil {
				log.Printf("company %s carries unknown status %s", company.ID, company.CurrentStatus)
				continue
			}

			alert := &alerts.Alert{
				CompanyID: company.ID,
				Type:      alerts.TypeStaleStatus,
				Severity:  alerts.SeverityMedium,
				Title:     fmt.Sprintf("Company stuck in %s", info.Name),
				Description: fmt.Sprintf("%s has been in status %s (%s) since %s",
					company.Name, string(company.CurrentStatus), info.Name,
					company.StatusChangedAt.Format("2006-01-02")),
			}
			if err := s.alertRepo.Create(ctx, alert); err != nil {
				log.Printf("failed to create stale alert for company %s: %v", company.ID, err)
				continue
			}
			if s.notifier != nil {
				s.notifier.NotifyAlert(alert)
			}
		}
	}
	return nil
}
