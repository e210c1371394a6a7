package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/supabase"
)

// supabaseRequest is one call received by fakeSupabase.
type supabaseRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakeSupabase is a PostgREST stand-in that keeps one row per user for each
// table and records every request.
type fakeSupabase struct {
	mu       sync.Mutex
	rows     map[string]map[string]map[string]any
	requests []supabaseRequest
	server   *httptest.Server
}

func newFakeSupabase(t *testing.T) *fakeSupabase {
	t.Helper()
	f := &fakeSupabase{rows: map[string]map[string]map[string]any{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSupabase) client() *supabase.Client {
	return supabase.NewClient(f.server.URL, "service-role-key").WithHTTPClient(f.server.Client())
}

func (f *fakeSupabase) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}
	f.requests = append(f.requests, supabaseRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})

	if r.Header.Get("apikey") != "service-role-key" {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
		return
	}

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	userID := strings.TrimPrefix(r.URL.Query().Get("user_id"), "eq.")

	switch {
	case table == "rpc/broadcast":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet:
		out := []map[string]any{}
		if row, ok := f.rows[table][userID]; ok {
			out = append(out, row)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost:
		if f.rows[table] == nil {
			f.rows[table] = map[string]map[string]any{}
		}
		id, _ := body["user_id"].(string)
		f.rows[table][id] = body
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		delete(f.rows[table], userID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeSupabase) row(table, userID string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[table][userID]
}

// broadcasts returns the bodies of every realtime broadcast received.
func (f *fakeSupabase) broadcasts() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, req := range f.requests {
		if req.Path == "/rest/v1/rpc/broadcast" {
			out = append(out, req.Body)
		}
	}
	return out
}

// chatScript answers with the next scripted reply on every Chat call.
type chatScript struct {
	mu      sync.Mutex
	replies []*llm.ChatReply
	seen    []llm.ChatRequest
}

func (c *chatScript) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, req)
	if len(c.replies) == 0 {
		return &llm.ChatReply{Content: "Okej!"}, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

// textScript answers Complete calls in order.
type textScript struct {
	mu      sync.Mutex
	answers []string
	calls   int
}

func (s *textScript) Complete(context.Context, string, string, bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.answers) == 0 {
		return "", nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}
