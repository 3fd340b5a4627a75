package escrow

import (
	"encoding/json"
	"time"
)

// EventType identifies the type of an escrow event.
type EventType string

const (
	// EventProposed records the creation of an escrow agreement. It is always
	// the first event of a stream and the only one carrying a payload.
	EventProposed EventType = "EscrowProposed"
	// EventFunded records the buyer funding the escrow.
	EventFunded EventType = "EscrowFunded"
	// EventDisputed records a party raising a dispute.
	EventDisputed EventType = "EscrowDisputed"
	// EventReleased records the arbiter releasing funds to the seller.
	EventReleased EventType = "EscrowReleased"
	// EventRefunded records the arbiter refunding the buyer.
	EventRefunded EventType = "EscrowRefunded"
)

// EventTypeForAction maps a requested action to the event type it records.
func EventTypeForAction(action Action) EventType {
	switch action {
	case ActionFund:
		return EventFunded
	case ActionDispute:
		return EventDisputed
	case ActionRelease:
		return EventReleased
	case ActionRefund:
		return EventRefunded
	default:
		return ""
	}
}

// Event is one immutable entry of an escrow's append-only history.
type Event struct {
	ID          int64
	EscrowID    string
	Type        EventType
	ActorID     int64
	PayloadJSON []byte
	Version     int64
	CreatedAt   time.Time
}

// ProposedPayload is the structured payload carried by EventProposed.
// Missing fields resolve to nil during replay.
type ProposedPayload struct {
	BuyerID  *int64 `json:"buyer_id,omitempty"`
	SellerID *int64 `json:"seller_id,omitempty"`
	Amount   *int64 `json:"amount,omitempty"`
}

// EncodeProposedPayload marshals the founding payload for persistence.
func EncodeProposedPayload(buyerID, sellerID, amount int64) ([]byte, error) {
	payload := ProposedPayload{
		BuyerID:  &buyerID,
		SellerID: &sellerID,
		Amount:   &amount,
	}
	return json.Marshal(payload)
}
