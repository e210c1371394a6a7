package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// NewServer creates the Asynq server that drains the Gramz queues.
func NewServer(redisURL string, concurrency int) (*asynq.Server, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueRecipes: 6,
				QueueProfile: 3,
				"default":    1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
		},
	), nil
}

func logTaskError(ctx context.Context, t *asynq.Task, err error) {
	info := describeTask(ctx, t)
	slog.WarnContext(ctx, "Task failed",
		"type", t.Type(),
		"task_id", info.id,
		"retry", info.retry,
		"max_retry", info.maxRetry,
		"final", info.finalAttempt(err),
		"error", err,
	)
}

// NewServeMux registers handlers behind the given middlewares, outermost first.
func NewServeMux(handlers map[string]asynq.HandlerFunc, mws ...asynq.MiddlewareFunc) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(mws...)
	for taskType, handler := range handlers {
		mux.HandleFunc(taskType, handler)
	}
	return mux
}
