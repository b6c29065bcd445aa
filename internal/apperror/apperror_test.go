package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("story", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("log in first"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Timeout wraps ErrTimeout",
			err:       Timeout("listing stories"),
			target:    ErrTimeout,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("login", errors.New("connection refused")),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "wrapped Busy still matches",
			err:       fmt.Errorf("toggling favorite: %w", Busy("already pending")),
			target:    ErrBusy,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("story", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantKind error
		wantName string
	}{
		{http.StatusBadRequest, ErrValidation, "validation_error"},
		{http.StatusUnauthorized, ErrUnauthorized, "unauthorized"},
		{http.StatusForbidden, ErrForbidden, "forbidden"},
		{http.StatusNotFound, ErrNotFound, "not_found"},
		{http.StatusConflict, ErrConflict, "conflict"},
		{http.StatusInternalServerError, ErrUnavailable, "unavailable"},
		{http.StatusBadGateway, ErrUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "")
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("FromStatus(%d) does not wrap %v", tt.status, tt.wantKind)
			}
			if got := Kind(err); got != tt.wantName {
				t.Errorf("Kind() = %q, want %q", got, tt.wantName)
			}
			if got := StatusOf(fmt.Errorf("outer: %w", err)); got != tt.status {
				t.Errorf("StatusOf() = %d, want %d", got, tt.status)
			}
			if err.Message != http.StatusText(tt.status) {
				t.Errorf("Message = %q, want status text", err.Message)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("story", "abc123"),
			wantMessage: "story not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("url", "url is required"),
			wantMessage: "url is required",
		},
		{
			name:        "Timeout names the operation",
			err:         Timeout("adding favorite"),
			wantMessage: "adding favorite timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("Message() = %q, want fallback", got)
	}
	if got := Message(fmt.Errorf("x: %w", Forbidden("not yours")), "fallback"); got != "not yours" {
		t.Errorf("Message() = %q, want %q", got, "not yours")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := Kind(errors.New("boom")); got != "internal_error" {
		t.Errorf("Kind() = %q, want internal_error", got)
	}
	if got := Kind(nil); got != "" {
		t.Errorf("Kind(nil) = %q, want empty", got)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("author", "author is required")

	if err.Field != "author" {
		t.Errorf("Field = %q, want %q", err.Field, "author")
	}
}
