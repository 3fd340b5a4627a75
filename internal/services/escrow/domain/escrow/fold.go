package escrow

import "encoding/json"

// State is the derived view of an escrow agreement. It is never persisted:
// every read recomputes it from the event history.
type State struct {
	Status   Status
	BuyerID  *int64
	SellerID *int64
	Amount   *int64
	Version  int64
	Final    bool
}

// NewState returns the replay starting point: a proposed escrow with no
// events folded yet.
func NewState() State {
	return State{Status: StatusProposed}
}

// Fold derives the current state from an ordered event sequence. It is pure
// and deterministic; unknown event types are skipped for forward
// compatibility, though they still advance the version.
func Fold(events []Event) State {
	state := NewState()
	for _, evt := range events {
		state = apply(state, evt)
	}
	return state
}

// apply folds a single event into state.
func apply(state State, evt Event) State {
	switch evt.Type {
	case EventProposed:
		var payload ProposedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.Status = StatusProposed
		state.BuyerID = payload.BuyerID
		state.SellerID = payload.SellerID
		state.Amount = payload.Amount
	case EventFunded:
		state.Status = StatusFunded
	case EventDisputed:
		state.Status = StatusDisputed
	case EventReleased:
		state.Status = StatusReleased
		state.Final = true
	case EventRefunded:
		state.Status = StatusRefunded
		state.Final = true
	}
	state.Version = evt.Version
	return state
}
