package workflows

import "fmt"

// RejectionCode classifies why a transition request was refused.
type RejectionCode string

const (
	RejectionInvalidStatusCode RejectionCode = "INVALID_STATUS_CODE"
	RejectionIllegalTransition RejectionCode = "ILLEGAL_TRANSITION"
)

// Rejection is the structured refusal of a transition request. It is a
// normal return value, not an error: illegal transitions are an expected
// outcome of user input and the caller renders the allowed set.
type Rejection struct {
	Code            RejectionCode `json:"code"`
	CurrentStatus   StatusCode    `json:"current_status"`
	RequestedStatus StatusCode    `json:"requested_status"`
	AllowedStatuses []StatusCode  `json:"allowed_statuses"`
}

// Message renders a human-readable reason for the rejection.
func (r *Rejection) Message() string {
	if r.Code == RejectionInvalidStatusCode {
		code := r.RequestedStatus
		if IsValidStatus(code) {
			code = r.CurrentStatus
		}
		return fmt.Sprintf("status code %q is not recognized", string(code))
	}
	return fmt.Sprintf("transition %s -> %s is not allowed", string(r.CurrentStatus), string(r.RequestedStatus))
}

// Validate decides whether current -> requested is a legal transition.
// A nil result means the transition may proceed. Force bypasses the rule
// table but never code validity: an unrecognized requested status is
// rejected even under force.
func (sm *StateMachine) Validate(current, requested StatusCode, force bool) *Rejection {
	if !IsValidStatus(requested) {
		return &Rejection{
			Code:            RejectionInvalidStatusCode,
			CurrentStatus:   current,
			RequestedStatus: requested,
		}
	}
	if force {
		return nil
	}
	allowed, err := sm.AllowedNextStatuses(current)
	if err != nil {
		return &Rejection{
			Code:            RejectionInvalidStatusCode,
			CurrentStatus:   current,
			RequestedStatus: requested,
		}
	}
	if !sm.CanTransition(current, requested) {
		return &Rejection{
			Code:            RejectionIllegalTransition,
			CurrentStatus:   current,
			RequestedStatus: requested,
			AllowedStatuses: allowed,
		}
	}
	return nil
}
