package imports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EmailImport is one ingested checkup-result email. The mail itself is
// fetched and parsed upstream; this service only stores the structured
// payload and links it to a company when one matches. Rows are immutable
// apart from the company link.
type EmailImport struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   *uuid.UUID     `gorm:"type:uuid;index" json:"company_id,omitempty"`
	Source      string         `gorm:"not null" json:"source"`
	FromAddress string         `gorm:"not null" json:"from_address"`
	Subject     string         `gorm:"not null" json:"subject"`
	ReceivedAt  time.Time      `gorm:"not null;index" json:"received_at"`
	Body        datatypes.JSON `gorm:"type:jsonb" json:"body"`
	Summary     string         `gorm:"type:text" json:"summary"`
	CreatedAt   time.Time      `json:"created_at"`
}
