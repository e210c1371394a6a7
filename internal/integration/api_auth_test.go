package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/socialchef/gramz/internal/agent"
	"github.com/socialchef/gramz/internal/api"
	"github.com/socialchef/gramz/internal/config"
	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/middleware"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/session"
	"github.com/socialchef/gramz/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "super-secret-jwt-key-for-tests"
	testSupabaseURL = "https://gramz.supabase.co"
)

func createTestToken(secret, supabaseURL, userID string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": "authenticated",
		"iss":  supabaseURL + "/auth/v1",
		"exp":  time.Now().Add(ttl).Unix(),
	})
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

type app struct {
	handler  http.Handler
	supabase *fakeSupabase
	model    *chatScript
	repo     *session.MemoryRepository
}

// newApp wires the API the way cmd/server does, with a scripted chat model
// and a fake Supabase backend.
func newApp(t *testing.T, replies ...*llm.ChatReply) *app {
	t.Helper()
	cfg := &config.Config{SupabaseURL: testSupabaseURL, SupabaseJWTSecret: testSecret}

	sb := newFakeSupabase(t)
	sbClient := sb.client()
	prefs := preferences.NewStore(sbClient)
	timers := timer.NewService(timer.NewMemoryStore(), sbClient)
	model := &chatScript{replies: replies}
	repo := session.NewMemoryRepository()

	dispatcher := agent.NewDispatcher(agent.Handlers{Timer: timers, Preferences: prefs})
	server := api.NewServer(api.Deps{
		Agent:       agent.New(model, dispatcher, agent.Options{}),
		Sessions:    session.NewRegistry(repo, prefs),
		Preferences: prefs,
		Timers:      timers,
	})

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg))
		server.Mount(r)
	})
	return &app{handler: r, supabase: sb, model: model, repo: repo}
}

func (a *app) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func TestAPI_RejectsBadTokens(t *testing.T) {
	a := newApp(t)
	userID := uuid.NewString()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"expired", "Bearer " + createTestToken(testSecret, testSupabaseURL, userID, -time.Hour)},
		{"wrong secret", "Bearer " + createTestToken("wrong-secret", testSupabaseURL, userID, time.Hour)},
		{"wrong issuer", "Bearer " + createTestToken(testSecret, "https://other.supabase.co", userID, time.Hour)},
		{"missing subject", "Bearer " + createTestToken(testSecret, testSupabaseURL, "", time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hej"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			a.handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
	assert.Empty(t, a.model.seen)
}

func TestAPI_ChatSetsTimerAndBroadcasts(t *testing.T) {
	a := newApp(t,
		&llm.ChatReply{FunctionCalls: []llm.FunctionCall{{ID: "call_1", Name: agent.FuncSetTimer, Arguments: `{"duration":300}`}}},
		&llm.ChatReply{Content: "Timern är satt på 5 minuter."},
	)
	userID := uuid.NewString()
	token := createTestToken(testSecret, testSupabaseURL, userID, time.Hour)

	rr := a.do(http.MethodPost, "/api/chat", token, `{"message":"set a timer for 5 minutes"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"text":"Timern är satt på 5 minuter."}`, rr.Body.String())

	broadcasts := a.supabase.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, "user:"+userID+":timer", broadcasts[0]["channel"])
	assert.Equal(t, "timer", broadcasts[0]["event"])

	rr = a.do(http.MethodGet, "/api/timer", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var state timer.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, 300, state.DurationSeconds)

	history, err := a.repo.Load(t.Context(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, llm.RoleSystem, history[0].Role)
}

func TestAPI_StoreUserInfoPersistsPreferences(t *testing.T) {
	a := newApp(t,
		&llm.ChatReply{FunctionCalls: []llm.FunctionCall{{ID: "call_1", Name: agent.FuncStoreUserInfo, Arguments: `{"preferences":{"dislikes":["koriander"]}}`}}},
		&llm.ChatReply{Content: "Noterat, ingen koriander."},
	)
	userID := uuid.NewString()
	token := createTestToken(testSecret, testSupabaseURL, userID, time.Hour)

	rr := a.do(http.MethodPost, "/api/chat", token, `{"message":"jag tål inte koriander"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	row := a.supabase.row("user_preferences_v2", userID)
	require.NotNil(t, row)
	assert.Equal(t, []any{"koriander"}, row["dislikes"])

	rr = a.do(http.MethodGet, "/api/preferences", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var prefs preferences.Preferences
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &prefs))
	assert.Equal(t, []string{"koriander"}, prefs.Dislikes)
}

func TestAPI_UsersDoNotShareConversations(t *testing.T) {
	a := newApp(t)
	alice := createTestToken(testSecret, testSupabaseURL, uuid.NewString(), time.Hour)
	bob := createTestToken(testSecret, testSupabaseURL, uuid.NewString(), time.Hour)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/chat", alice, `{"message":"hej från alice"}`).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/chat", bob, `{"message":"hej från bob"}`).Code)

	require.Len(t, a.model.seen, 2)
	for _, msg := range a.model.seen[1].Messages {
		assert.NotContains(t, msg.Content, "alice")
	}
}

func TestAPI_ResetStartsFreshConversation(t *testing.T) {
	a := newApp(t)
	userID := uuid.NewString()
	token := createTestToken(testSecret, testSupabaseURL, userID, time.Hour)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/chat", token, `{"message":"första"}`).Code)
	require.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/chat", token, "").Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/chat", token, `{"message":"andra"}`).Code)

	last := a.model.seen[len(a.model.seen)-1].Messages
	require.Len(t, last, 2)
	assert.Equal(t, llm.RoleSystem, last[0].Role)
	assert.Equal(t, "andra", last[1].Content)
}
