package openai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/socialchef/gramz/internal/httpclient"
)

const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

var (
	ErrNoResponse  = errors.New("no response from OpenAI")
	ErrNoEmbedding = errors.New("no embedding returned")
)

// APIError is a non-2xx answer from the OpenAI API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAI API error: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	apiKey         string
	baseURL        string
	chatModel      string
	embeddingModel string
	httpClient     *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithChatModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.chatModel = model
		}
	}
}

func WithEmbeddingModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:         apiKey,
		baseURL:        DefaultBaseURL,
		chatModel:      DefaultChatModel,
		embeddingModel: DefaultEmbeddingModel,
		httpClient:     httpclient.InstrumentedClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
