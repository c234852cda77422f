package workflows

import "fmt"

// StatusCode identifies one stage of the secondary-checkup workflow.
// Values mirror the status codes used on the labor-bureau paperwork.
type StatusCode string

// Phase is the coarse grouping a StatusCode belongs to.
type Phase string

const (
	PhaseSales            Phase = "SALES"
	PhaseProposal         Phase = "PROPOSAL"
	PhaseContract         Phase = "CONTRACT"
	PhaseCheckup          Phase = "CHECKUP"
	PhaseSecondaryCheckup Phase = "SECONDARY_CHECKUP"
	PhaseBilling          Phase = "BILLING"
	PhaseCompleted        Phase = "COMPLETED"
	PhaseSpecial          Phase = "SPECIAL"
)

const (
	StatusUntouched           StatusCode = "01"
	StatusAppointmentSecured  StatusCode = "02"
	StatusInitialHearingDone  StatusCode = "03"
	StatusProposalPrepared    StatusCode = "04"
	StatusProposalDelivered   StatusCode = "05"
	StatusUnderConsideration  StatusCode = "06"
	StatusApplicationReceived StatusCode = "07"
	StatusContractConcluded   StatusCode = "08"
	StatusCheckupScheduling   StatusCode = "09"
	StatusPrimaryResults      StatusCode = "10"
	StatusCheckupInProgress   StatusCode = "11"
	StatusAwaitingJudgment    StatusCode = "12"
	StatusJudgmentComplete    StatusCode = "13"
	StatusSecondaryScheduling StatusCode = "14"
	StatusSecondaryInProgress StatusCode = "15"
	StatusSecondaryDone       StatusCode = "16"
	StatusGuidanceDelivered   StatusCode = "17"
	StatusInvoicePreparation  StatusCode = "18"
	StatusClaimSubmitted      StatusCode = "19"
	StatusPaymentPending      StatusCode = "20"
	StatusPaymentConfirmed    StatusCode = "21"
	StatusRenewalPending      StatusCode = "22"
	StatusOnHold              StatusCode = "99A"
	StatusCancelled           StatusCode = "99C"
	StatusDeclined            StatusCode = "99D"
	StatusError               StatusCode = "99E"
)

// StatusInfo is the catalog entry for one status code.
type StatusInfo struct {
	Code        StatusCode `json:"code"`
	Name        string     `json:"name"`
	Phase       Phase      `json:"phase"`
	Description string     `json:"description"`
}

// UnknownStatusError is returned when a code is not in the fixed catalog.
type UnknownStatusError struct {
	Code StatusCode
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status code %q", string(e.Code))
}

var statusCatalog = map[StatusCode]StatusInfo{
	StatusUntouched:           {StatusUntouched, "Untouched", PhaseSales, "New lead, no contact made yet"},
	StatusAppointmentSecured:  {StatusAppointmentSecured, "Appointment Secured", PhaseSales, "First visit scheduled with the company"},
	StatusInitialHearingDone:  {StatusInitialHearingDone, "Initial Hearing Done", PhaseSales, "Visit completed, needs confirmed"},
	StatusProposalPrepared:    {StatusProposalPrepared, "Proposal Prepared", PhaseProposal, "Checkup program proposal drafted"},
	StatusProposalDelivered:   {StatusProposalDelivered, "Proposal Delivered", PhaseProposal, "Proposal handed to the company"},
	StatusUnderConsideration:  {StatusUnderConsideration, "Under Consideration", PhaseProposal, "Company reviewing the proposal"},
	StatusApplicationReceived: {StatusApplicationReceived, "Application Received", PhaseContract, "Signed application received"},
	StatusContractConcluded:   {StatusContractConcluded, "Contract Concluded", PhaseContract, "Service contract in force"},
	StatusCheckupScheduling:   {StatusCheckupScheduling, "Checkup Scheduling", PhaseContract, "Coordinating checkup dates with the clinic"},
	StatusPrimaryResults:      {StatusPrimaryResults, "Primary Results Collected", PhaseCheckup, "Primary exam results gathered from the company"},
	StatusCheckupInProgress:   {StatusCheckupInProgress, "Checkup In Progress", PhaseCheckup, "Employees undergoing the checkup"},
	StatusAwaitingJudgment:    {StatusAwaitingJudgment, "Awaiting Judgment", PhaseCheckup, "Checkup done, physician judgment pending"},
	StatusJudgmentComplete:    {StatusJudgmentComplete, "Judgment Complete", PhaseCheckup, "Physician judgment returned"},
	StatusSecondaryScheduling: {StatusSecondaryScheduling, "Secondary Checkup Scheduling", PhaseSecondaryCheckup, "Scheduling the secondary examination"},
	StatusSecondaryInProgress: {StatusSecondaryInProgress, "Secondary Checkup In Progress", PhaseSecondaryCheckup, "Secondary examination underway"},
	StatusSecondaryDone:       {StatusSecondaryDone, "Secondary Checkup Done", PhaseSecondaryCheckup, "Secondary examination completed"},
	StatusGuidanceDelivered:   {StatusGuidanceDelivered, "Health Guidance Delivered", PhaseSecondaryCheckup, "Post-checkup health guidance delivered"},
	StatusInvoicePreparation:  {StatusInvoicePreparation, "Invoice Preparation", PhaseBilling, "Preparing the labor-insurance claim documents"},
	StatusClaimSubmitted:      {StatusClaimSubmitted, "Claim Submitted", PhaseBilling, "Claim filed with the labor bureau"},
	StatusPaymentPending:      {StatusPaymentPending, "Payment Pending", PhaseBilling, "Waiting on bureau payment"},
	StatusPaymentConfirmed:    {StatusPaymentConfirmed, "Payment Confirmed", PhaseBilling, "Payment received and reconciled"},
	StatusRenewalPending:      {StatusRenewalPending, "Annual Renewal Pending", PhaseCompleted, "Cycle complete, next fiscal year renewal open"},
	StatusOnHold:              {StatusOnHold, "On Hold", PhaseSpecial, "Progress paused at the company's request"},
	StatusCancelled:           {StatusCancelled, "Cancelled", PhaseSpecial, "Engagement cancelled after contract"},
	StatusDeclined:            {StatusDeclined, "Declined", PhaseSpecial, "Company declined before contract"},
	StatusError:               {StatusError, "Error", PhaseSpecial, "Processing error, needs operator attention"},
}

// statusOrder fixes the display order for catalog listings.
var statusOrder = []StatusCode{
	StatusUntouched, StatusAppointmentSecured, StatusInitialHearingDone,
	StatusProposalPrepared, StatusProposalDelivered, StatusUnderConsideration,
	StatusApplicationReceived, StatusContractConcluded, StatusCheckupScheduling,
	StatusPrimaryResults, StatusCheckupInProgress, StatusAwaitingJudgment, StatusJudgmentComplete,
	StatusSecondaryScheduling, StatusSecondaryInProgress, StatusSecondaryDone, StatusGuidanceDelivered,
	StatusInvoicePreparation, StatusClaimSubmitted, StatusPaymentPending, StatusPaymentConfirmed,
	StatusRenewalPending,
	StatusOnHold, StatusCancelled, StatusDeclined, StatusError,
}

// Describe returns the catalog entry for a status code.
func Describe(code StatusCode) (StatusInfo, error) {
	info, ok := statusCatalog[code]
	if !ok {
		return StatusInfo{}, &UnknownStatusError{Code: code}
	}
	return info, nil
}

// IsValidStatus reports whether code is in the fixed catalog.
func IsValidStatus(code StatusCode) bool {
	_, ok := statusCatalog[code]
	return ok
}

// AllStatuses returns every catalog entry in workflow order.
func AllStatuses() []StatusInfo {
	out := make([]StatusInfo, 0, len(statusOrder))
	for _, code := range statusOrder {
		out = append(out, statusCatalog[code])
	}
	return out
}

// StatusesInPhase returns the codes belonging to a phase, in workflow order.
func StatusesInPhase(phase Phase) []StatusCode {
	var out []StatusCode
	for _, code := range statusOrder {
		if statusCatalog[code].Phase == phase {
			out = append(out, code)
		}
	}
	return out
}
