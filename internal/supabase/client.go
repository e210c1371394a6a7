package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/socialchef/gramz/internal/httpclient"
)

// ErrRequestFailed wraps every non-2xx PostgREST answer.
var ErrRequestFailed = errors.New("supabase request failed")

// Client talks to the PostgREST and realtime endpoints of a Supabase project
// with the service role key.
type Client struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

func NewClient(supabaseURL, serviceKey string) *Client {
	return &Client{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient:  httpclient.InstrumentedClient,
	}
}

// WithHTTPClient returns a copy of c that uses hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.httpClient = hc
	return &cp
}

// Eq builds a PostgREST equality filter.
func Eq(column, value string) url.Values {
	return url.Values{column: []string{"eq." + value}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, prefer string, out any) error {
	endpoint := c.supabaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Supabase"), method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Select reads rows of table matching query into out (a pointer to a slice).
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if q.Get("select") == "" {
		q.Set("select", "*")
	}
	return c.do(ctx, http.MethodGet, "/rest/v1/"+table, q, nil, "", out)
}

// Insert appends row to table.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, row, "return=minimal", nil)
}

// Upsert inserts row or merges it into the row with the same onConflict key.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, row any) error {
	q := url.Values{}
	if onConflict != "" {
		q.Set("on_conflict", onConflict)
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, q, row, "resolution=merge-duplicates,return=minimal", nil)
}

// Delete removes the rows of table matching query.
func (c *Client) Delete(ctx context.Context, table string, query url.Values) error {
	if len(query) == 0 {
		return fmt.Errorf("refusing to delete from %s without a filter", table)
	}
	return c.do(ctx, http.MethodDelete, "/rest/v1/"+table, query, nil, "return=minimal", nil)
}
