package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{
		Message: "something went wrong",
	}
	if err.Error() != "something went wrong" {
		t.Errorf("expected 'something went wrong', got %v", err.Error())
	}

	wrappedErr := errors.New("underlying error")
	errWithWrap := &AppError{
		Message: "failed operation",
		Err:     wrappedErr,
	}
	expected := "failed operation: underlying error"
	if errWithWrap.Error() != expected {
		t.Errorf("expected %q, got %q", expected, errWithWrap.Error())
	}
	if !errors.Is(errWithWrap, wrappedErr) {
		t.Errorf("expected wrapped error to be reachable through Unwrap")
	}
}

func TestAppError_IsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want bool
	}{
		{
			name: "rate limit",
			err:  NewRateLimitError("slow down", "RATE", ""),
			want: true,
		},
		{
			name: "turn in progress",
			err:  NewConflictError("busy", "TURN_IN_PROGRESS", ""),
			want: true,
		},
		{
			name: "validation",
			err:  NewValidationError("bad", "BAD", ""),
			want: false,
		},
		{
			name: "provider 502",
			err:  NewProviderError("upstream", "UPSTREAM", nil),
			want: true,
		},
		{
			name: "provider 400",
			err:  &AppError{Type: ErrorTypeProvider, StatusCode: http.StatusBadRequest},
			want: false,
		},
		{
			name: "persistence",
			err:  NewPersistenceError("insert failed", "INSERT", nil),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsRetryable(); got != tt.want {
				t.Errorf("AppError.IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	notFound := NewNotFoundError("recipe not found", "RECIPE_NOT_FOUND", "")
	wrapped := fmt.Errorf("load recipe: %w", notFound)

	if got := StatusCode(wrapped); got != http.StatusNotFound {
		t.Errorf("expected 404 for wrapped not found, got %d", got)
	}
	if got := StatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("expected 500 for plain error, got %d", got)
	}

	appErr, ok := As(wrapped)
	if !ok || appErr.Code() != "RECIPE_NOT_FOUND" {
		t.Errorf("expected As to find RECIPE_NOT_FOUND, got %v %v", appErr, ok)
	}
}
