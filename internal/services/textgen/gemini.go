package textgen

import (
	"context"
	"fmt"
	"time"

	"github.com/socialchef/gramz/internal/httpclient"
	"github.com/socialchef/gramz/internal/metrics"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements TextProvider with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini API client. An empty apiKey falls back
// to GEMINI_API_KEY / GOOGLE_API_KEY in the environment.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.NewInstrumentedClient(60 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return string(ProviderGemini) }

func (p *GeminiProvider) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (text string, err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordTextGeneration(ctx, p.Name(), startTime, err)
		metrics.RecordExternalCall(ctx, p.Name(), startTime, err)
	}()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	if jsonMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(httpclient.WithProvider(ctx, "Gemini"), p.model, []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: userContent}},
	}}, config)
	if err != nil {
		return "", err
	}

	text = collectText(resp)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				out += part.Text
			}
		}
		if out != "" {
			break
		}
	}
	return out
}
