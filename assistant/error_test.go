package assistant

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	e := NewError(KindEmptyResponse, "No response", "The model returned nothing.")
	if got := e.Error(); got != "No response: The model returned nothing." {
		t.Errorf("Error() = %q", got)
	}
}

func TestAsError(t *testing.T) {
	base := NewError(KindRemoteNotFound, "Model not found", "No such model on the server.")

	t.Run("direct", func(t *testing.T) {
		pe, ok := AsError(base)
		if !ok {
			t.Fatal("AsError() ok = false, want true")
		}
		if pe.Kind != KindRemoteNotFound {
			t.Errorf("Kind = %q, want %q", pe.Kind, KindRemoteNotFound)
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("prompt failed: %w", base)
		pe, ok := AsError(wrapped)
		if !ok {
			t.Fatal("AsError() ok = false for wrapped error, want true")
		}
		if pe != base {
			t.Error("AsError() did not recover the original error value")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if _, ok := AsError(errors.New("boom")); ok {
			t.Error("AsError() ok = true for plain error, want false")
		}
	})

	t.Run("nil", func(t *testing.T) {
		if _, ok := AsError(nil); ok {
			t.Error("AsError() ok = true for nil, want false")
		}
	})
}

func TestTransportError(t *testing.T) {
	t.Run("wraps cause", func(t *testing.T) {
		e := TransportError("Server unreachable", errors.New("dial tcp: connection refused"))
		if e.Kind != KindTransportFailure {
			t.Errorf("Kind = %q, want %q", e.Kind, KindTransportFailure)
		}
		if e.Title != "Server unreachable" {
			t.Errorf("Title = %q", e.Title)
		}
		if e.Description != "dial tcp: connection refused" {
			t.Errorf("Description = %q", e.Description)
		}
	})

	t.Run("nil cause gets default description", func(t *testing.T) {
		e := TransportError("Request failed", nil)
		if e.Description != "The request could not be completed." {
			t.Errorf("Description = %q", e.Description)
		}
	})
}
