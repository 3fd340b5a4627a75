package escrow

import (
	"reflect"
	"testing"
)

func proposedEvent(version int64) Event {
	payload, err := EncodeProposedPayload(1, 2, 100)
	if err != nil {
		panic(err)
	}
	return Event{
		EscrowID:    "esc-1",
		Type:        EventProposed,
		ActorID:     1,
		PayloadJSON: payload,
		Version:     version,
	}
}

func plainEvent(typ EventType, version int64) Event {
	return Event{EscrowID: "esc-1", Type: typ, Version: version}
}

func TestFoldEmptySequence(t *testing.T) {
	state := Fold(nil)

	if state.Status != StatusProposed {
		t.Fatalf("expected PROPOSED, got %s", state.Status)
	}
	if state.BuyerID != nil || state.SellerID != nil || state.Amount != nil {
		t.Fatal("expected nil buyer, seller and amount")
	}
	if state.Version != 0 {
		t.Fatalf("expected version 0, got %d", state.Version)
	}
	if state.Final {
		t.Fatal("expected non-final state")
	}
}

func TestFoldProposedPopulatesTerms(t *testing.T) {
	state := Fold([]Event{proposedEvent(1)})

	if state.Status != StatusProposed {
		t.Fatalf("expected PROPOSED, got %s", state.Status)
	}
	if state.BuyerID == nil || *state.BuyerID != 1 {
		t.Fatalf("expected buyer 1, got %v", state.BuyerID)
	}
	if state.SellerID == nil || *state.SellerID != 2 {
		t.Fatalf("expected seller 2, got %v", state.SellerID)
	}
	if state.Amount == nil || *state.Amount != 100 {
		t.Fatalf("expected amount 100, got %v", state.Amount)
	}
	if state.Version != 1 {
		t.Fatalf("expected version 1, got %d", state.Version)
	}
}

func TestFoldProposedMissingPayloadFields(t *testing.T) {
	evt := proposedEvent(1)
	evt.PayloadJSON = []byte(`{"buyer_id":7}`)

	state := Fold([]Event{evt})

	if state.BuyerID == nil || *state.BuyerID != 7 {
		t.Fatalf("expected buyer 7, got %v", state.BuyerID)
	}
	if state.SellerID != nil {
		t.Fatalf("expected nil seller, got %v", state.SellerID)
	}
	if state.Amount != nil {
		t.Fatalf("expected nil amount, got %v", state.Amount)
	}
}

func TestFoldFullLifecycle(t *testing.T) {
	cases := []struct {
		name   string
		types  []EventType
		status Status
		final  bool
	}{
		{"funded", []EventType{EventProposed, EventFunded}, StatusFunded, false},
		{"disputed", []EventType{EventProposed, EventFunded, EventDisputed}, StatusDisputed, false},
		{"released", []EventType{EventProposed, EventFunded, EventReleased}, StatusReleased, true},
		{"refunded", []EventType{EventProposed, EventFunded, EventDisputed, EventRefunded}, StatusRefunded, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := make([]Event, 0, len(tc.types))
			for i, typ := range tc.types {
				if typ == EventProposed {
					events = append(events, proposedEvent(int64(i+1)))
					continue
				}
				events = append(events, plainEvent(typ, int64(i+1)))
			}

			state := Fold(events)

			if state.Status != tc.status {
				t.Fatalf("expected %s, got %s", tc.status, state.Status)
			}
			if state.Final != tc.final {
				t.Fatalf("expected final=%v, got %v", tc.final, state.Final)
			}
			if state.Version != int64(len(tc.types)) {
				t.Fatalf("expected version %d, got %d", len(tc.types), state.Version)
			}
		})
	}
}

func TestFoldDeterministic(t *testing.T) {
	events := []Event{
		proposedEvent(1),
		plainEvent(EventFunded, 2),
		plainEvent(EventDisputed, 3),
	}

	first := Fold(events)
	second := Fold(events)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical folds, got %+v and %+v", first, second)
	}
}

func TestFoldIgnoresUnknownEventTypes(t *testing.T) {
	events := []Event{
		proposedEvent(1),
		plainEvent(EventFunded, 2),
		plainEvent(EventType("EscrowAnnotated"), 3),
	}

	state := Fold(events)

	if state.Status != StatusFunded {
		t.Fatalf("expected FUNDED after unknown event, got %s", state.Status)
	}
	if state.Version != 3 {
		t.Fatalf("expected version 3 (unknown events still advance it), got %d", state.Version)
	}
}

func TestStatusIsFinal(t *testing.T) {
	finals := map[Status]bool{
		StatusProposed: false,
		StatusFunded:   false,
		StatusDisputed: false,
		StatusReleased: true,
		StatusRefunded: true,
	}
	for status, want := range finals {
		if got := status.IsFinal(); got != want {
			t.Fatalf("%s: expected IsFinal=%v, got %v", status, want, got)
		}
	}
}
