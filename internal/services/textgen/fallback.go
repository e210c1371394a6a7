package textgen

import (
	"context"
	"log/slog"

	"github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/metrics"
)

// FallbackProvider switches to a secondary provider when the primary fails
// with a retryable error. It makes at most one attempt per provider.
type FallbackProvider struct {
	Primary   TextProvider
	Secondary TextProvider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(primary, secondary TextProvider) *FallbackProvider {
	return &FallbackProvider{
		Primary:   primary,
		Secondary: secondary,
	}
}

func (f *FallbackProvider) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f *FallbackProvider) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error) {
	text, err := f.Primary.Complete(ctx, systemPrompt, userContent, jsonMode)
	if err == nil {
		return text, nil
	}

	providerErr := ClassifyError(err, f.Primary.Name())
	if !IsRetryableError(err) {
		slog.InfoContext(ctx, "Primary text provider failed with non-retryable error, not attempting fallback",
			"provider", f.Primary.Name(),
			"error_type", providerErr.Type,
			"error", err)
		return "", err
	}

	slog.InfoContext(ctx, "Primary text provider failed with retryable error, attempting fallback",
		"provider", f.Primary.Name(),
		"fallback", f.Secondary.Name(),
		"error_type", providerErr.Type,
		"error", err)
	metrics.RecordFallback(ctx, f.Primary.Name(), f.Secondary.Name(), providerErr.Type)

	text, fallbackErr := f.Secondary.Complete(ctx, systemPrompt, userContent, jsonMode)
	if fallbackErr == nil {
		return text, nil
	}

	slog.ErrorContext(ctx, "Both primary and secondary text providers failed",
		"primary_error_type", providerErr.Type,
		"primary_error", err,
		"fallback_error_type", ClassifyError(fallbackErr, f.Secondary.Name()).Type,
		"fallback_error", fallbackErr)

	return "", errors.NewProviderError(
		"both primary and secondary providers failed",
		"PROVIDER_FALLBACK_FAILED",
		err,
	)
}
