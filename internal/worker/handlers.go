package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/prompts"
	"github.com/socialchef/gramz/internal/supabase"
)

// TextCompleter is the text-only model used for relevance checks.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

type SummaryStore interface {
	SaveSummary(ctx context.Context, userID, summary string) error
}

type Reembedder interface {
	Reembed(ctx context.Context, recipeID string) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, channel, event string, payload any) error
}

// SummaryUpdate is broadcast on the user's profile channel after a new
// summary is stored.
type SummaryUpdate struct {
	Summary string `json:"summary"`
}

type Processor struct {
	model       TextCompleter
	summaries   SummaryStore
	recipes     Reembedder
	broadcaster Broadcaster
}

// NewProcessor wires the task handlers. broadcaster may be nil.
func NewProcessor(model TextCompleter, summaries SummaryStore, recipes Reembedder, broadcaster Broadcaster) *Processor {
	return &Processor{
		model:       model,
		summaries:   summaries,
		recipes:     recipes,
		broadcaster: broadcaster,
	}
}

// Handlers maps every task type to its handler.
func (p *Processor) Handlers() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeRelevanceCheck:    p.HandleRelevanceCheck,
		TypeGenerateEmbedding: p.HandleGenerateEmbedding,
	}
}

func (p *Processor) HandleRelevanceCheck(ctx context.Context, t *asynq.Task) error {
	var payload RelevanceCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == "" || strings.TrimSpace(payload.Message) == "" {
		return fmt.Errorf("relevance check needs user_id and message: %w", asynq.SkipRetry)
	}

	system, user := prompts.Relevance(payload.Message)
	answer, err := p.model.Complete(ctx, system, user, false)
	if err != nil {
		return fmt.Errorf("relevance check failed: %w", err)
	}
	if !prompts.IsAffirmative(answer) {
		slog.DebugContext(ctx, "Message is not personal", "user_id", payload.UserID)
		return nil
	}

	system, user = prompts.Summarize(payload.Message)
	answer, err = p.model.Complete(ctx, system, user, true)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	var parsed SummaryUpdate
	if err := json.Unmarshal([]byte(prompts.StripCodeFence(answer)), &parsed); err != nil {
		slog.WarnContext(ctx, "Discarding unparseable summary", "user_id", payload.UserID, "error", err)
		return nil
	}
	parsed.Summary = strings.TrimSpace(parsed.Summary)
	if parsed.Summary == "" {
		return nil
	}

	if err := p.summaries.SaveSummary(ctx, payload.UserID, parsed.Summary); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	slog.InfoContext(ctx, "User summary stored", "user_id", payload.UserID)

	if p.broadcaster != nil {
		channel := supabase.UserChannel(payload.UserID, "profile")
		if err := p.broadcaster.Broadcast(ctx, channel, "summary", parsed); err != nil {
			slog.WarnContext(ctx, "Failed to broadcast summary", "user_id", payload.UserID, "error", err)
		}
	}
	return nil
}

func (p *Processor) HandleGenerateEmbedding(ctx context.Context, t *asynq.Task) error {
	var payload GenerateEmbeddingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.recipes.Reembed(ctx, payload.RecipeID); err != nil {
		// Bad ids and deleted recipes will not succeed on a retry.
		if apperrors.StatusCode(err) < 500 {
			return fmt.Errorf("failed to generate embedding for %s: %v: %w", payload.RecipeID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	slog.InfoContext(ctx, "Embedding generated", "recipe_id", payload.RecipeID)
	return nil
}
