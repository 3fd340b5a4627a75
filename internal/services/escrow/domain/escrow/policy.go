package escrow

// Roles holds the fixed participant identities of an escrow agreement.
type Roles struct {
	BuyerID   int64
	SellerID  int64
	ArbiterID int64
}

// CanPerform reports whether an actor may request an action given the
// escrow's roles. The rule set is independent of current status: funding is
// buyer-only, disputing is open to buyer or seller but never the arbiter,
// and release/refund decisions belong to the arbiter alone.
func CanPerform(action Action, actorID int64, roles Roles) bool {
	switch action {
	case ActionFund:
		return actorID == roles.BuyerID
	case ActionDispute:
		return actorID == roles.BuyerID || actorID == roles.SellerID
	case ActionRelease, ActionRefund:
		return actorID == roles.ArbiterID
	default:
		return false
	}
}
