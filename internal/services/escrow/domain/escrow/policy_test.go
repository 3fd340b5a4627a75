package escrow

import "testing"

var testRoles = Roles{BuyerID: 1, SellerID: 2, ArbiterID: 3}

func TestCanPerformFundBuyerOnly(t *testing.T) {
	if !CanPerform(ActionFund, 1, testRoles) {
		t.Fatal("expected buyer to fund")
	}
	if CanPerform(ActionFund, 2, testRoles) {
		t.Fatal("expected seller not to fund")
	}
	if CanPerform(ActionFund, 3, testRoles) {
		t.Fatal("expected arbiter not to fund")
	}
}

func TestCanPerformDisputeBuyerOrSeller(t *testing.T) {
	if !CanPerform(ActionDispute, 1, testRoles) {
		t.Fatal("expected buyer to dispute")
	}
	if !CanPerform(ActionDispute, 2, testRoles) {
		t.Fatal("expected seller to dispute")
	}
	if CanPerform(ActionDispute, 3, testRoles) {
		t.Fatal("expected arbiter not to dispute")
	}
}

func TestCanPerformReleaseRefundArbiterOnly(t *testing.T) {
	for _, action := range []Action{ActionRelease, ActionRefund} {
		if !CanPerform(action, 3, testRoles) {
			t.Fatalf("expected arbiter to %s", action)
		}
		if CanPerform(action, 1, testRoles) {
			t.Fatalf("expected buyer not to %s", action)
		}
		if CanPerform(action, 2, testRoles) {
			t.Fatalf("expected seller not to %s", action)
		}
	}
}

func TestCanPerformDeniesStrangers(t *testing.T) {
	for _, action := range []Action{ActionFund, ActionDispute, ActionRelease, ActionRefund} {
		if CanPerform(action, 99, testRoles) {
			t.Fatalf("expected outsider denied for %s", action)
		}
	}
}

func TestCanPerformUnknownAction(t *testing.T) {
	if CanPerform(Action("PROPOSED"), 1, testRoles) {
		t.Fatal("expected unsupported action denied for every actor")
	}
}

func TestValidateNewEscrow(t *testing.T) {
	valid := NewEscrow{Amount: 100, BuyerID: 1, SellerID: 2, ArbiterID: 3}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid escrow, got %v", err)
	}

	cases := []struct {
		name  string
		input NewEscrow
		want  error
	}{
		{"zero amount", NewEscrow{Amount: 0, BuyerID: 1, SellerID: 2, ArbiterID: 3}, ErrInvalidAmount},
		{"negative amount", NewEscrow{Amount: -5, BuyerID: 1, SellerID: 2, ArbiterID: 3}, ErrInvalidAmount},
		{"buyer is seller", NewEscrow{Amount: 100, BuyerID: 1, SellerID: 1, ArbiterID: 3}, ErrRolesNotDistinct},
		{"buyer is arbiter", NewEscrow{Amount: 100, BuyerID: 3, SellerID: 2, ArbiterID: 3}, ErrRolesNotDistinct},
		{"seller is arbiter", NewEscrow{Amount: 100, BuyerID: 1, SellerID: 2, ArbiterID: 2}, ErrRolesNotDistinct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
