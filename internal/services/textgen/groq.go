package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/socialchef/gramz/internal/httpclient"
	"github.com/socialchef/gramz/internal/metrics"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

// HTTPError is a non-2xx answer from an OpenAI-compatible endpoint.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// GroqProvider implements TextProvider for Groq's OpenAI-compatible API.
type GroqProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGroqProvider creates a new Groq text provider
func NewGroqProvider(apiKey, model string) *GroqProvider {
	if model == "" {
		model = DefaultGroqModel
	}
	return &GroqProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultGroqBaseURL,
		httpClient: httpclient.InstrumentedClient,
	}
}

func (p *GroqProvider) Name() string { return string(ProviderGroq) }

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *GroqProvider) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (text string, err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordTextGeneration(ctx, p.Name(), startTime, err)
		metrics.RecordExternalCall(ctx, p.Name(), startTime, err)
	}()

	req := groqRequest{
		Model: p.model,
		Messages: []groqMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	}
	if jsonMode {
		req.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Groq"), http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", &HTTPError{Provider: "Groq", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out groqResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
