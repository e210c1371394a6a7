package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/socialchef/gramz/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// taskInfo is what every middleware reports about a task.
type taskInfo struct {
	id       string
	queue    string
	retry    int
	maxRetry int
	userID   string
	recipeID string
}

func describeTask(ctx context.Context, t *asynq.Task) taskInfo {
	info := taskInfo{}
	info.id, _ = asynq.GetTaskID(ctx)
	info.queue, _ = asynq.GetQueueName(ctx)
	info.retry, _ = asynq.GetRetryCount(ctx)
	info.maxRetry, _ = asynq.GetMaxRetry(ctx)

	var ids struct {
		UserID   string `json:"user_id"`
		RecipeID string `json:"recipe_id"`
	}
	if json.Unmarshal(t.Payload(), &ids) == nil {
		info.userID, info.recipeID = ids.UserID, ids.RecipeID
	}
	return info
}

// finalAttempt reports whether asynq will give up on the task after err.
func (i taskInfo) finalAttempt(err error) bool {
	return errors.Is(err, asynq.SkipRetry) || i.retry >= i.maxRetry
}

// OTelMiddleware runs each task in a consumer span.
func OTelMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		info := describeTask(ctx, t)

		ctx, span := telemetry.Tracer("worker").Start(ctx, "task "+t.Type(), trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		span.SetAttributes(
			attribute.String("task.id", info.id),
			attribute.String("task.type", t.Type()),
			attribute.String("task.queue", info.queue),
			attribute.Int("task.retry_count", info.retry),
		)
		if info.userID != "" {
			span.SetAttributes(attribute.String("user.id", info.userID))
		}
		if info.recipeID != "" {
			span.SetAttributes(attribute.String("recipe.id", info.recipeID))
		}

		err := h.ProcessTask(ctx, t)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}

// SentryMiddleware reports panics, and errors on the last attempt of a task.
// Failures that asynq will still retry are left to the retry.
func SentryMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		info := describeTask(ctx, t)

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("task_type", t.Type())
			scope.SetTag("task_id", info.id)
			scope.SetTag("queue", info.queue)
			scope.SetTag("retry_count", strconv.Itoa(info.retry))
			if info.userID != "" {
				scope.SetUser(sentry.User{ID: info.userID})
			}
		})
		ctx = sentry.SetHubOnContext(ctx, hub)

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(ctx, r)
				panic(r)
			}
		}()

		err := h.ProcessTask(ctx, t)
		if err != nil && info.finalAttempt(err) {
			hub.CaptureException(err)
		}
		return err
	})
}

// Middleware records every task handled through it. Safe on a nil receiver.
func (m *WorkerMetrics) Middleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := h.ProcessTask(ctx, t)

		status := "success"
		switch {
		case errors.Is(err, asynq.SkipRetry):
			status = "skipped"
		case err != nil:
			status = "error"
		}
		m.RecordJob(ctx, t.Type(), status, time.Since(start).Seconds())
		return err
	})
}
