package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name       string
		errorType  ErrorType
		message    string
		wantStatus int
	}{
		{
			name:       "bad request",
			errorType:  ErrorTypeBadRequest,
			message:    "Payload too deeply nested",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthorized",
			errorType:  ErrorTypeUnauthorized,
			message:    "Missing admin token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "forbidden",
			errorType:  ErrorTypeForbidden,
			message:    "Forbidden",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "rate limited",
			errorType:  ErrorTypeRateLimit,
			message:    "Too many requests. Please try again later.",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "too large",
			errorType:  ErrorTypeTooLarge,
			message:    "Request body too large",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "not found",
			errorType:  ErrorTypeNotFound,
			message:    "Not found",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "internal",
			errorType:  ErrorTypeInternal,
			message:    "Admin auth is not configured",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown type falls back to 500",
			errorType:  ErrorType("bogus"),
			message:    "x",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.errorType, tt.message)

			if err.Type != tt.errorType {
				t.Errorf("NewError() type = %v, want %v", err.Type, tt.errorType)
			}
			if err.Message != tt.message {
				t.Errorf("NewError() message = %v, want %v", err.Message, tt.message)
			}
			if err.Details == nil {
				t.Error("NewError() details should be initialized")
			}
			if got := err.HTTPStatusCode(); got != tt.wantStatus {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestErrorWithHeaders(t *testing.T) {
	err := NewError(ErrorTypeRateLimit, "Too many requests. Please try again later.").
		WithHeader("Retry-After", "30").
		WithHeader("X-RateLimit-Remaining", "0")

	if err.Headers["Retry-After"] != "30" {
		t.Errorf("Retry-After = %q, want 30", err.Headers["Retry-After"])
	}
	if len(err.Headers) != 2 {
		t.Errorf("expected 2 headers, got %d", len(err.Headers))
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("token signature is invalid")
	err := NewError(ErrorTypeUnauthorized, "Invalid or expired token").WithCause(cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if !strings.Contains(err.Error(), "signature is invalid") {
		t.Errorf("Error() should include cause, got: %v", err.Error())
	}
	// the client-facing message never carries the cause
	if strings.Contains(err.Message, "signature") {
		t.Errorf("Message leaked cause: %q", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	err := NewError(ErrorTypeForbidden, "Forbidden").WithDetail("role", "writer")
	if got := err.Error(); got != "forbidden: Forbidden" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFrom(t *testing.T) {
	t.Run("structured error passes through", func(t *testing.T) {
		orig := NewError(ErrorTypeForbidden, "Forbidden")
		wrapped := fmt.Errorf("gate: %w", orig)

		if got := From(wrapped); got != orig {
			t.Errorf("From() = %v, want original", got)
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := From(fmt.Errorf("boom"))
		if got.Type != ErrorTypeInternal {
			t.Errorf("type = %v, want internal", got.Type)
		}
		if got.Message != "Internal server error" {
			t.Errorf("message = %q", got.Message)
		}
		if got.Cause == nil {
			t.Error("expected cause to be kept")
		}
	})
}

func TestErrorIs(t *testing.T) {
	err := NewError(ErrorTypeRateLimit, "a")
	if !err.Is(NewError(ErrorTypeRateLimit, "b")) {
		t.Error("expected errors with the same type to match")
	}
	if err.Is(NewError(ErrorTypeForbidden, "a")) {
		t.Error("expected errors with different types not to match")
	}
	if err.Is(fmt.Errorf("plain")) {
		t.Error("expected plain errors not to match")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if got := Wrap(fmt.Errorf("inner"), "outer").Error(); got != "outer: inner" {
		t.Errorf("Wrap() = %q", got)
	}
}
