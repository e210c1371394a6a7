// Package agent runs the function-calling chat loop of the cooking assistant.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/metrics"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/sentry"
	"github.com/socialchef/gramz/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultMaxSteps = 6

// RephraseMessage is the only text a user sees when a turn fails.
const RephraseMessage = "Förlåt, något gick fel. Kan du formulera om din fråga och försöka igen?"

var (
	ErrTurnFailed = errors.New("agent: turn failed")
	errMaxSteps   = errors.New("agent: too many model round trips")
)

// ChatModel is a function-calling chat provider.
type ChatModel interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatReply, error)
}

type Response struct {
	Text    string          `json:"text"`
	Recipes []recipes.Match `json:"recipes,omitempty"`
}

type Options struct {
	// Model overrides the provider default when non-empty.
	Model string
	// MaxSteps caps model round trips per turn. Zero means DefaultMaxSteps.
	MaxSteps int
	// TurnTimeout bounds one whole turn. Zero means no extra deadline.
	TurnTimeout time.Duration
}

type Agent struct {
	model      ChatModel
	dispatcher *Dispatcher
	opts       Options
}

func New(model ChatModel, dispatcher *Dispatcher, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Agent{model: model, dispatcher: dispatcher, opts: opts}
}

// Turn sends message on conv and drives the model until it answers with
// text. The conversation only changes when the turn succeeds. On failure the
// response carries RephraseMessage and the error is ErrTurnFailed; provider
// errors are logged, never returned.
func (a *Agent) Turn(ctx context.Context, userID string, conv *Conversation, message string) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, apperrors.NewValidationError("message must not be empty", "EMPTY_MESSAGE", "Write a message to the assistant")
	}

	working, err := conv.begin()
	if err != nil {
		return Response{}, err
	}

	ctx, span := telemetry.Tracer("agent").Start(ctx, "agent.turn")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if a.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.TurnTimeout)
		defer cancel()
	}

	start := time.Now()
	working, resp, steps, err := a.run(ctx, userID, append(working, llm.UserMessage(message)))
	span.SetAttributes(attribute.Int("agent.steps", steps))
	metrics.RecordTurn(ctx, start, steps, err)

	if err != nil {
		conv.abort()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "Agent turn failed", "user_id", userID, "steps", steps, "error", err)
		sentry.CaptureError(ctx, err, map[string]string{"component": "agent", "user_id": userID})
		return Response{Text: RephraseMessage}, ErrTurnFailed
	}

	conv.commit(working)
	slog.InfoContext(ctx, "Agent turn completed", "user_id", userID, "steps", steps, "recipes", len(resp.Recipes))
	return resp, nil
}

func (a *Agent) run(ctx context.Context, userID string, working []llm.Message) ([]llm.Message, Response, int, error) {
	var found []recipes.Match
	decls := Declarations()

	for step := 1; step <= a.opts.MaxSteps; step++ {
		reply, err := a.model.Chat(ctx, llm.ChatRequest{
			Model:     a.opts.Model,
			Messages:  working,
			Functions: decls,
		})
		if err != nil {
			return nil, Response{}, step, fmt.Errorf("model call %d: %w", step, err)
		}
		if reply == nil {
			return nil, Response{}, step, fmt.Errorf("model call %d: empty reply", step)
		}

		if len(reply.FunctionCalls) == 0 {
			working = append(working, llm.AssistantMessage(reply.Content))
			return working, Response{Text: reply.Content, Recipes: found}, step, nil
		}

		// Only the first requested call is honored.
		call := reply.FunctionCalls[0]
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		if len(reply.FunctionCalls) > 1 {
			slog.WarnContext(ctx, "Ignoring extra function calls", "honored", call.Name, "requested", len(reply.FunctionCalls))
		}

		result := a.dispatcher.Dispatch(ctx, userID, call)
		found = mergeMatches(found, result.Recipes)

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, Response{}, step, fmt.Errorf("encode %s result: %w", call.Name, err)
		}
		working = append(working,
			llm.Message{Role: llm.RoleAssistant, Content: reply.Content, FunctionCall: &call},
			llm.Message{Role: llm.RoleTool, CallID: call.ID, Content: string(payload)},
		)
	}

	return nil, Response{}, a.opts.MaxSteps, errMaxSteps
}

// mergeMatches appends add to found, skipping recipes already present.
func mergeMatches(found, add []recipes.Match) []recipes.Match {
	for _, m := range add {
		dup := false
		for _, f := range found {
			if m.ID != "" && f.ID == m.ID {
				dup = true
				break
			}
		}
		if !dup {
			found = append(found, m)
		}
	}
	return found
}
