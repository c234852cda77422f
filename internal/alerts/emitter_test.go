package alerts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

func TestMaybeEmitSpecialStatuses(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name      string
		toStatus  workflows.StatusCode
		alertType string
		severity  Severity
	}{
		{"error status", workflows.StatusError, TypeStatusError, SeverityHigh},
		{"hold status", workflows.StatusOnHold, TypeStatusHold, SeverityMedium},
		{"cancelled status", workflows.StatusCancelled, TypeStatusClosed, SeverityLow},
		{"declined status", workflows.StatusDeclined, TypeStatusClosed, SeverityLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alert := MaybeEmit(companyID, tc.toStatus, "operator note")
			assert.NotNil(t, alert)
			assert.Equal(t, companyID, alert.CompanyID)
			assert.Equal(t, tc.alertType, alert.Type)
			assert.Equal(t, tc.severity, alert.Severity)
			assert.False(t, alert.IsResolved)
			assert.Contains(t, alert.Description, "operator note")
		})
	}
}

func TestMaybeEmitOrdinaryStatusesAreSilent(t *testing.T) {
	companyID := uuid.New()

	for _, info := range workflows.AllStatuses() {
		if info.Phase == workflows.PhaseSpecial {
			continue
		}
		assert.Nil(t, MaybeEmit(companyID, info.Code, "reason"), "status %s should not raise an alert", info.Code)
	}
}

func TestMaybeEmitWithoutReason(t *testing.T) {
	alert := MaybeEmit(uuid.New(), workflows.StatusOnHold, "")
	assert.NotNil(t, alert)
	assert.Equal(t, "Status changed to 99A", alert.Description)
}
