package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for alerts
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Alert types
const (
	TypeStatusHold   = "status_hold"
	TypeStatusError  = "status_error"
	TypeStatusClosed = "status_closed"
	TypeStaleStatus  = "stale_status"
)

// Alert represents a notification record raised against a company.
// Alerts are created as side effects of status transitions or by the
// stale-status sweeper, and resolved later by an operator.
type Alert struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	Type        string     `gorm:"not null" json:"type"`
	Severity    Severity   `gorm:"not null" json:"severity"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	IsResolved  bool       `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedBy  *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
