package alerts

import (
	"fmt"

	"github.com/google/uuid"

	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

type statusAlertPolicy struct {
	Type     string
	Severity Severity
	Title    string
}

// statusAlertPolicies maps the special workflow statuses to the alert they
// raise. Severity is a pure function of which code fired.
var statusAlertPolicies = map[workflows.StatusCode]statusAlertPolicy{
	workflows.StatusError:     {TypeStatusError, SeverityHigh, "Company entered error status"},
	workflows.StatusOnHold:    {TypeStatusHold, SeverityMedium, "Company placed on hold"},
	workflows.StatusCancelled: {TypeStatusClosed, SeverityLow, "Engagement cancelled"},
	workflows.StatusDeclined:  {TypeStatusClosed, SeverityLow, "Company declined the engagement"},
}

// MaybeEmit builds the alert a transition into toStatus should raise, or nil
// when the target status is not special. The caller persists the alert inside
// the same transaction as the status change.
func MaybeEmit(companyID uuid.UUID, toStatus workflows.StatusCode, reason string) *Alert {
	policy, ok := statusAlertPolicies[toStatus]
	if !ok {
		return nil
	}

	description := fmt.Sprintf("Status changed to %s", string(toStatus))
	if reason != "" {
		description = fmt.Sprintf("%s: %s", description, reason)
	}

	return &Alert{
		CompanyID:   companyID,
		Type:        policy.Type,
		Severity:    policy.Severity,
		Title:       policy.Title,
		Description: description,
	}
}
