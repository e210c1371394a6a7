// Package textgen provides the text-only model family used for recipe
// drafting, categorization and the relevance worker. The function-calling
// chat model lives in services/openai.
package textgen

import (
	"context"
	"errors"
)

// ProviderType names a text generation backend.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
)

var ErrEmptyCompletion = errors.New("empty completion")

// TextProvider completes one system+user prompt. With jsonMode the provider
// is asked to answer with a single JSON object.
type TextProvider interface {
	Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error)
	Name() string
}
