package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/notifications/websocket"
)

// Event types pushed to dashboard clients
const (
	EventStatusChanged = "status_changed"
	EventAlertCreated  = "alert_created"
)

// Service fans committed workflow events out to dashboard websockets and,
// for high-severity alerts, to the email channel. It runs strictly after
// commit; delivery failures are logged, never propagated into the
// transition path.
type Service struct {
	hub   *websocket.Manager
	email *EmailChannel
}

// NewService creates a new notification service. email may be nil when the
// channel is disabled in config.
func NewService(hub *websocket.Manager, email *EmailChannel) *Service {
	return &Service{hub: hub, email: email}
}

// NotifyStatusChanged broadcasts a committed transition.
func (s *Service) NotifyStatusChanged(company *companies.Company, result *companies.TransitionResult) {
	s.hub.Broadcast(websocket.Message{
		Type:      EventStatusChanged,
		CompanyID: company.ID,
		Payload: map[string]interface{}{
			"company_name":    company.Name,
			"previous_status": result.PreviousStatus,
			"new_status":      result.NewStatus,
			"changed_at":      result.ChangedAt,
		},
		SentAt: time.Now(),
	})
}

// NotifyAlert broadcasts a new alert and emails high-severity ones.
func (s *Service) NotifyAlert(alert *alerts.Alert) {
	s.hub.Broadcast(websocket.Message{
		Type:      EventAlertCreated,
		CompanyID: alert.CompanyID,
		Payload:   alert,
		SentAt:    time.Now(),
	})

	if s.email == nil || alert.Severity != alerts.SeverityHigh {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("[checkup-portal] %s", alert.Title)
	body := fmt.Sprintf("Company: %s\nSeverity: %s\n\n%s", alert.CompanyID, alert.Severity, alert.Description)
	if err := s.email.Send(ctx, subject, body); err != nil {
		log.Printf("failed to email alert %s: %v", alert.ID, err)
	}
}
