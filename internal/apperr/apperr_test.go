package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Unauthenticated("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("no"), http.StatusNotFound},
		{Invalid("no"), http.StatusBadRequest},
		{Conflict("no"), http.StatusConflict},
		{Internal("no", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.status {
			t.Fatalf("%q: expected status %d, got %d", tt.err.Message, tt.status, tt.err.Status)
		}
	}
}

func TestFromPassesThroughAndWraps(t *testing.T) {
	original := Forbidden("nope")
	if got := From(original); got != original {
		t.Fatalf("expected pass-through, got %+v", got)
	}

	wrapped := From(fmt.Errorf("db says: %w", original))
	if wrapped != original {
		t.Fatalf("expected unwrap to find the app error, got %+v", wrapped)
	}

	unknown := errors.New("disk on fire")
	got := From(unknown)
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("unknown errors must become 500, got %d", got.Status)
	}
	if got.Message != "server error" {
		t.Fatalf("unknown error detail must not reach the message, got %q", got.Message)
	}
	if !errors.Is(got, unknown) {
		t.Fatalf("the cause should still be reachable via errors.Is")
	}
}

func TestWithFields(t *testing.T) {
	err := Forbidden("forbidden").WithFields(map[string]any{"have": []string{"parent"}})
	if err.Fields["have"] == nil {
		t.Fatalf("expected fields to be attached")
	}
}
