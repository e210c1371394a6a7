package agent

import (
	"context"
	"slices"
	"sync"

	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/timer"
	"github.com/stretchr/testify/mock"
)

type MockTimer struct {
	mock.Mock
}

func (m *MockTimer) Start(ctx context.Context, userID string, seconds int) (timer.State, error) {
	args := m.Called(ctx, userID, seconds)
	return args.Get(0).(timer.State), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) []recipes.Match {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.([]recipes.Match)
	}
	return nil
}

type fakePersister struct {
	stored []recipes.Recipe
	err    error
	panic  bool
}

func (f *fakePersister) Store(_ context.Context, r recipes.Recipe) (recipes.Recipe, error) {
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return recipes.Recipe{}, f.err
	}
	r = r.Renumbered()
	r.ID = "11111111-1111-1111-1111-111111111111"
	f.stored = append(f.stored, r)
	return r, nil
}

type fakeCategorizer struct {
	labels []string
}

func (f fakeCategorizer) Categorize(context.Context, recipes.Recipe) []string {
	return f.labels
}

type fakeListener struct {
	got []recipes.Recipe
}

func (f *fakeListener) OnRecipeStored(_ context.Context, r recipes.Recipe) {
	f.got = append(f.got, r)
}

type fakeMerger struct {
	updates []preferences.Update
	err     error
}

func (f *fakeMerger) Merge(_ context.Context, _ string, u preferences.Update) (preferences.Preferences, error) {
	if f.err != nil {
		return preferences.Preferences{}, f.err
	}
	f.updates = append(f.updates, u)
	return preferences.Preferences{}.Merge(u), nil
}

// scriptedModel replays canned replies and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []*llm.ChatReply
	errs     []error
	requests []llm.ChatRequest
	block    chan struct{}
}

func (s *scriptedModel) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatReply, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	req.Messages = slices.Clone(req.Messages)
	s.requests = append(s.requests, req)

	i := len(s.requests) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.replies) {
		return &llm.ChatReply{Content: "klart"}, nil
	}
	return s.replies[i], nil
}

func callReply(id, name, args string) *llm.ChatReply {
	return &llm.ChatReply{FunctionCalls: []llm.FunctionCall{{ID: id, Name: name, Arguments: args}}}
}

func textReply(text string) *llm.ChatReply {
	return &llm.ChatReply{Content: text}
}
