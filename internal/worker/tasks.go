package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeRelevanceCheck    = "relevance:check"
	TypeGenerateEmbedding = "generate:embedding"
)

// Queues. Embeddings make stored recipes searchable and go first.
const (
	QueueRecipes = "recipes"
	QueueProfile = "profile"
)

// RelevanceCheckPayload is the payload for checking whether a chat message
// says something personal worth remembering.
type RelevanceCheckPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// GenerateEmbeddingPayload is the payload for embedding tasks
type GenerateEmbeddingPayload struct {
	RecipeID string `json:"recipe_id"`
}

// NewRelevanceCheckTask creates a new relevance check task
func NewRelevanceCheckTask(payload RelevanceCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRelevanceCheck, data,
		asynq.Queue(QueueProfile),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	), nil
}

// NewGenerateEmbeddingTask creates a new embedding task
func NewGenerateEmbeddingTask(payload GenerateEmbeddingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateEmbedding, data,
		asynq.Queue(QueueRecipes),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
