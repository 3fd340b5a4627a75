package escrow

import "testing"

func TestIsTransitionAllowedTable(t *testing.T) {
	statuses := []Status{StatusProposed, StatusFunded, StatusDisputed, StatusReleased, StatusRefunded}
	actions := []Action{ActionFund, ActionDispute, ActionRelease, ActionRefund}

	allowed := map[Status]map[Action]bool{
		StatusProposed: {ActionFund: true},
		StatusFunded:   {ActionDispute: true, ActionRelease: true},
		StatusDisputed: {ActionRelease: true, ActionRefund: true},
		StatusReleased: {},
		StatusRefunded: {},
	}

	for _, from := range statuses {
		for _, action := range actions {
			want := allowed[from][action]
			if got := IsTransitionAllowed(from, action); got != want {
				t.Fatalf("%s -> %s: expected %v, got %v", from, action, want, got)
			}
		}
	}
}

func TestTerminalStatusesAllowNothing(t *testing.T) {
	for _, from := range []Status{StatusReleased, StatusRefunded} {
		for _, action := range []Action{ActionFund, ActionDispute, ActionRelease, ActionRefund} {
			if IsTransitionAllowed(from, action) {
				t.Fatalf("terminal status %s must not allow %s", from, action)
			}
		}
	}
}

func TestNormalizeAction(t *testing.T) {
	cases := []struct {
		input string
		want  Action
		ok    bool
	}{
		{"FUNDED", ActionFund, true},
		{"funded", ActionFund, true},
		{"  Disputed ", ActionDispute, true},
		{"RELEASED", ActionRelease, true},
		{"REFUNDED", ActionRefund, true},
		{"PROPOSED", "", false},
		{"", "", false},
		{"SETTLED", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeAction(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("normalize %q: expected (%q, %v), got (%q, %v)", tc.input, tc.want, tc.ok, got, ok)
		}
	}
}

func TestActionStatus(t *testing.T) {
	if ActionFund.Status() != StatusFunded {
		t.Fatal("expected FUNDED action to target FUNDED status")
	}
	if ActionRefund.Status() != StatusRefunded {
		t.Fatal("expected REFUNDED action to target REFUNDED status")
	}
}

func TestEventTypeForAction(t *testing.T) {
	cases := map[Action]EventType{
		ActionFund:    EventFunded,
		ActionDispute: EventDisputed,
		ActionRelease: EventReleased,
		ActionRefund:  EventRefunded,
	}
	for action, want := range cases {
		if got := EventTypeForAction(action); got != want {
			t.Fatalf("%s: expected %s, got %s", action, want, got)
		}
	}
	if got := EventTypeForAction(Action("PROPOSED")); got != "" {
		t.Fatalf("expected empty event type for unsupported action, got %s", got)
	}
}
