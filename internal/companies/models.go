package companies

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// Company is the workflow subject: one client company moving through the
// secondary-checkup administration pipeline.
type Company struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string               `gorm:"not null" json:"name"`
	NameKana        string               `json:"name_kana"`
	ContactName     string               `json:"contact_name"`
	ContactEmail    string               `json:"contact_email"`
	ContactPhone    string               `json:"contact_phone"`
	Address         string               `json:"address"`
	EmployeeCount   int                  `json:"employee_count"`
	Notes           string               `gorm:"type:text" json:"notes"`
	CurrentStatus   workflows.StatusCode `gorm:"not null;default:'01';index" json:"current_status"`
	StatusChangedAt time.Time            `gorm:"not null" json:"status_changed_at"`
	AssignedTo      *uuid.UUID           `gorm:"type:uuid" json:"assigned_to,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`
}

// StatusHistory is one immutable audit record of a status change.
// FromStatus is null only for the row written at company creation.
type StatusHistory struct {
	ID           uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"company_id"`
	FromStatus   *workflows.StatusCode `json:"from_status"`
	ToStatus     workflows.StatusCode  `gorm:"not null" json:"to_status"`
	ChangedBy    *uuid.UUID            `gorm:"type:uuid" json:"changed_by,omitempty"`
	ChangeReason string                `gorm:"type:text" json:"change_reason"`
	Metadata     datatypes.JSON        `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time             `gorm:"not null;index" json:"created_at"`
}

// TableName pins the audit table name
func (StatusHistory) TableName() string {
	return "status_histories"
}
