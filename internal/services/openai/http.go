package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/socialchef/gramz/internal/httpclient"
	"github.com/socialchef/gramz/internal/metrics"
)

// post sends body as JSON to path and decodes a 2xx answer into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) (err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordExternalCall(ctx, "openai", startTime, err)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "OpenAI"), http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.Unmarshal(respBody, out)
}
