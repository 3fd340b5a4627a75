package escrow

import "strings"

// Status describes the derived lifecycle label of an escrow agreement.
type Status string

const (
	StatusProposed Status = "PROPOSED"
	StatusFunded   Status = "FUNDED"
	StatusDisputed Status = "DISPUTED"
	StatusReleased Status = "RELEASED"
	StatusRefunded Status = "REFUNDED"
)

// IsFinal reports whether the status has no outgoing transitions.
func (s Status) IsFinal() bool {
	return s == StatusReleased || s == StatusRefunded
}

// Action is a requested transition, named by its target status label.
type Action string

const (
	ActionFund    Action = "FUNDED"
	ActionDispute Action = "DISPUTED"
	ActionRelease Action = "RELEASED"
	ActionRefund  Action = "REFUNDED"
)

// Status returns the status an action transitions to.
func (a Action) Status() Status {
	return Status(a)
}

// NormalizeAction canonicalizes an action label from adapter input.
// PROPOSED is not an action: proposing happens only through escrow creation.
func NormalizeAction(value string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "FUNDED":
		return ActionFund, true
	case "DISPUTED":
		return ActionDispute, true
	case "RELEASED":
		return ActionRelease, true
	case "REFUNDED":
		return ActionRefund, true
	default:
		return "", false
	}
}

// IsTransitionAllowed reports whether an action is legal from the current
// status. Terminal statuses allow nothing.
func IsTransitionAllowed(from Status, action Action) bool {
	switch from {
	case StatusProposed:
		return action == ActionFund
	case StatusFunded:
		return action == ActionDispute || action == ActionRelease
	case StatusDisputed:
		return action == ActionRelease || action == ActionRefund
	case StatusReleased, StatusRefunded:
		return false
	default:
		return false
	}
}
