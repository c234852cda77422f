package workflows

// StateMachine enforces company status transitions
type StateMachine struct {
	allowedTransitions map[StatusCode][]StatusCode
}

// NewStateMachine creates a new state machine with allowed transitions.
// The graph is intentionally cyclic: completed engagements route back into
// the sales pipeline to model annual renewal.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[StatusCode][]StatusCode{
			StatusUntouched:           {StatusAppointmentSecured, StatusDeclined},
			StatusAppointmentSecured:  {StatusInitialHearingDone, StatusUntouched, StatusDeclined},
			StatusInitialHearingDone:  {StatusProposalPrepared, StatusOnHold, StatusDeclined},
			StatusProposalPrepared:    {StatusProposalDelivered, StatusOnHold, StatusDeclined},
			StatusProposalDelivered:   {StatusUnderConsideration, StatusOnHold, StatusDeclined},
			StatusUnderConsideration:  {StatusApplicationReceived, StatusProposalDelivered, StatusOnHold, StatusDeclined},
			StatusApplicationReceived: {StatusContractConcluded, StatusOnHold, StatusCancelled},
			StatusContractConcluded:   {StatusCheckupScheduling, StatusOnHold, StatusCancelled},
			StatusCheckupScheduling:   {StatusPrimaryResults, StatusOnHold, StatusCancelled},
			StatusPrimaryResults:      {StatusCheckupInProgress, StatusOnHold, StatusError},
			StatusCheckupInProgress:   {StatusAwaitingJudgment, StatusOnHold, StatusError},
			StatusAwaitingJudgment:    {StatusJudgmentComplete, StatusOnHold, StatusError},
			StatusJudgmentComplete:    {StatusSecondaryScheduling, StatusInvoicePreparation, StatusOnHold},
			StatusSecondaryScheduling: {StatusSecondaryInProgress, StatusOnHold, StatusCancelled},
			StatusSecondaryInProgress: {StatusSecondaryDone, StatusOnHold, StatusError},
			StatusSecondaryDone:       {StatusGuidanceDelivered, StatusOnHold, StatusError},
			StatusGuidanceDelivered:   {StatusInvoicePreparation, StatusOnHold},
			StatusInvoicePreparation:  {StatusClaimSubmitted, StatusOnHold, StatusError},
			StatusClaimSubmitted:      {StatusPaymentPending, StatusOnHold, StatusError},
			StatusPaymentPending:      {StatusPaymentConfirmed, StatusOnHold, StatusError},
			StatusPaymentConfirmed:    {StatusRenewalPending},
			// Renew from scratch vs. renew on the existing contract.
			StatusRenewalPending: {StatusUntouched, StatusContractConcluded, StatusCancelled},
			StatusOnHold:         {StatusInitialHearingDone, StatusApplicationReceived, StatusAwaitingJudgment, StatusInvoicePreparation, StatusCancelled, StatusDeclined},
			StatusCancelled:      {},
			StatusDeclined:       {},
			StatusError:          {StatusOnHold, StatusCancelled},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to StatusCode) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// AllowedNextStatuses returns the legal next statuses for a given status.
// Terminal statuses return an empty slice.
func (sm *StateMachine) AllowedNextStatuses(from StatusCode) ([]StatusCode, error) {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return nil, &UnknownStatusError{Code: from}
	}
	out := make([]StatusCode, len(allowed))
	copy(out, allowed)
	return out, nil
}

// IsTerminal reports whether a status has no outgoing transitions.
func (sm *StateMachine) IsTerminal(code StatusCode) bool {
	return len(sm.allowedTransitions[code]) == 0 && IsValidStatus(code)
}
