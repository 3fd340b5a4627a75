package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeNotFound, "record not found")
	err := WithMetadata(CodeNotFound, "escrow missing", map[string]string{"EscrowID": "abc"})

	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}

	other := New(CodeContention, "lock timeout")
	if errors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	sentinel := New(CodeContention, "contention")
	err := fmt.Errorf("submit: %w", New(CodeContention, "version already claimed"))

	if !errors.Is(err, sentinel) {
		t.Fatal("expected wrapped error to match by code")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorage, "append event", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodePermissionDenied, "nope")); got != CodePermissionDenied {
		t.Fatalf("expected PERMISSION_DENIED, got %s", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected UNKNOWN for plain error, got %s", got)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("expected UNKNOWN for nil error, got %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeEscrowInvalidAmount, http.StatusBadRequest},
		{CodeEscrowRolesNotDistinct, http.StatusBadRequest},
		{CodeEscrowUnknownUser, http.StatusBadRequest},
		{CodeInvalidTransition, http.StatusConflict},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeContention, http.StatusServiceUnavailable},
		{CodeCanceled, http.StatusServiceUnavailable},
		{CodeStorage, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !CodeContention.Retryable() {
		t.Fatal("expected CONTENTION to be retryable")
	}
	if CodeInvalidTransition.Retryable() {
		t.Fatal("expected INVALID_TRANSITION not to be retryable")
	}
}
