package textgen

import (
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/services/openai"
	"google.golang.org/genai"
)

// ProviderError represents a classified error from an AI provider
type ProviderError struct {
	Type     string // "rate_limit", "credit_exhausted", "server_error", "client_error", "unknown"
	Message  string
	Provider string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return e.Message
}

func classifyStatus(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusPaymentRequired:
		return "credit_exhausted"
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return ""
	}
}

func statusOf(err error) int {
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return oaErr.StatusCode
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// ClassifyError maps an error to a ProviderError. Typed status codes win;
// otherwise the message is matched against known provider phrasings.
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	classified := func(kind string) *ProviderError {
		return &ProviderError{Type: kind, Message: msg, Provider: provider}
	}

	if kind := classifyStatus(statusOf(err)); kind != "" {
		return classified(kind)
	}

	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "status 429", "http 429", "error 429", "rate limit", "too many requests", "resource_exhausted"):
		return classified("rate_limit")
	case containsAny(lower, "status 402", "http 402", "insufficient credit", "credit exhausted", "billing", "quota"):
		return classified("credit_exhausted")
	case containsAny(lower, "status 5", "http 5", "error 5", "server error", "internal error", "unavailable"):
		return classified("server_error")
	case containsAny(lower, "status 4", "http 4", "error 4", "bad request", "unauthorized", "forbidden", "invalid_argument"):
		return classified("client_error")
	}

	return classified("unknown")
}

// IsRetryableError returns true if the error is retryable (rate limit, credit exhausted, or server error)
func IsRetryableError(err error) bool {
	providerErr := ClassifyError(err, "")
	if providerErr == nil {
		return false
	}

	switch providerErr.Type {
	case "rate_limit", "credit_exhausted", "server_error":
		return true
	default:
		return false
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
