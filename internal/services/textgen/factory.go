package textgen

import (
	"context"
	"fmt"

	"github.com/socialchef/gramz/internal/config"
)

// Keys carries the credentials of every text provider.
type Keys struct {
	Gemini string
	Groq   string
}

// NewProvider builds the configured text provider, wrapped in a
// FallbackProvider only when fallback is explicitly enabled.
func NewProvider(ctx context.Context, cfg config.TextGenerationConfig, keys Keys, openAI Completer) (TextProvider, error) {
	primary, err := newSingle(ctx, ProviderType(cfg.Provider), cfg.Model, keys, openAI)
	if err != nil {
		return nil, err
	}

	if !cfg.FallbackEnabled || cfg.FallbackProvider == cfg.Provider {
		return primary, nil
	}

	secondary, err := newSingle(ctx, ProviderType(cfg.FallbackProvider), "", keys, openAI)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return NewFallbackProvider(primary, secondary), nil
}

func newSingle(ctx context.Context, kind ProviderType, model string, keys Keys, openAI Completer) (TextProvider, error) {
	switch kind {
	case ProviderGroq:
		return NewGroqProvider(keys.Groq, model), nil
	case ProviderOpenAI:
		if openAI == nil {
			return nil, fmt.Errorf("openai text provider requires an OpenAI client")
		}
		return NewOpenAIProvider(openAI), nil
	case ProviderGemini, "":
		return NewGeminiProvider(ctx, keys.Gemini, model)
	default:
		return nil, fmt.Errorf("unknown text provider %q", kind)
	}
}
