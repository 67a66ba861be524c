package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
	}{
		{"bad request", BadRequest("bad"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("denied"), http.StatusForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("taken"), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Error() == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

func TestAsError(t *testing.T) {
	base := NotFound("post not found")

	if e, ok := AsError(base); !ok || e.Status != http.StatusNotFound {
		t.Errorf("AsError(base) = %v, %v", e, ok)
	}

	wrapped := fmt.Errorf("list posts: %w", base)
	if e, ok := AsError(wrapped); !ok || e.Message != "post not found" {
		t.Errorf("AsError(wrapped) = %v, %v", e, ok)
	}

	if _, ok := AsError(errors.New("plain")); ok {
		t.Error("plain errors should not convert")
	}
}
