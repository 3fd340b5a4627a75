package escrow

import apperrors "github.com/wolfedge/escrow/internal/platform/errors"

var (
	// ErrInvalidAmount indicates a non-positive escrow amount.
	ErrInvalidAmount = apperrors.New(apperrors.CodeEscrowInvalidAmount, "escrow amount must be positive")
	// ErrRolesNotDistinct indicates overlapping buyer/seller/arbiter identities.
	ErrRolesNotDistinct = apperrors.New(apperrors.CodeEscrowRolesNotDistinct, "buyer, seller and arbiter must be distinct users")
)
