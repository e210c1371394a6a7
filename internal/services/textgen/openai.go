package textgen

import (
	"context"
	"time"

	"github.com/socialchef/gramz/internal/metrics"
)

// Completer is the text-only surface of the OpenAI client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error)
}

// OpenAIProvider adapts the OpenAI client to TextProvider.
type OpenAIProvider struct {
	client Completer
}

func NewOpenAIProvider(client Completer) *OpenAIProvider {
	return &OpenAIProvider{client: client}
}

func (p *OpenAIProvider) Name() string { return string(ProviderOpenAI) }

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error) {
	startTime := time.Now()
	text, err := p.client.Complete(ctx, systemPrompt, userContent, jsonMode)
	metrics.RecordTextGeneration(ctx, p.Name(), startTime, err)
	return text, err
}
