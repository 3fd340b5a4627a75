package escrow

import "time"

// Metadata is the immutable record of an escrow agreement's fixed terms.
// It is created once with the founding EscrowProposed event and never
// mutated or deleted.
type Metadata struct {
	ID        string
	Amount    int64
	BuyerID   int64
	SellerID  int64
	ArbiterID int64
	CreatedAt time.Time
}

// Roles returns the fixed participant roles used for authorization.
func (m Metadata) Roles() Roles {
	return Roles{
		BuyerID:   m.BuyerID,
		SellerID:  m.SellerID,
		ArbiterID: m.ArbiterID,
	}
}

// NewEscrow carries validated creation input for an escrow agreement.
type NewEscrow struct {
	Amount    int64
	BuyerID   int64
	SellerID  int64
	ArbiterID int64
}

// Validate checks the semantic rules for escrow creation: a positive amount
// and three distinct participants. User existence is checked by storage,
// which owns the user directory.
func (n NewEscrow) Validate() error {
	if n.Amount <= 0 {
		return ErrInvalidAmount
	}
	if n.BuyerID == n.SellerID || n.BuyerID == n.ArbiterID || n.SellerID == n.ArbiterID {
		return ErrRolesNotDistinct
	}
	return nil
}
