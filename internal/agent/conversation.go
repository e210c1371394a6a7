package agent

import (
	"errors"
	"slices"
	"sync"

	"github.com/socialchef/gramz/internal/llm"
)

var (
	ErrTurnInProgress = errors.New("agent: a turn is already in progress")
	ErrInvalidHistory = errors.New("agent: history must start with the system message")
)

// Conversation is the ordered message history of one chat. The system
// message is set once at construction and always stays first.
type Conversation struct {
	mu       sync.Mutex
	messages []llm.Message
	busy     bool
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{messages: []llm.Message{llm.SystemMessage(systemPrompt)}}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

func (c *Conversation) SystemPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[0].Content
}

// Len is the number of messages including the system message.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Reset drops everything but the system message.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrTurnInProgress
	}
	c.messages = c.messages[:1:1]
	return nil
}

// Restore replaces the history with a persisted one. The conversation keeps
// its own system message; system messages after the first are dropped.
func (c *Conversation) Restore(history []llm.Message) error {
	if len(history) == 0 || history[0].Role != llm.RoleSystem {
		return ErrInvalidHistory
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrTurnInProgress
	}

	restored := make([]llm.Message, 1, len(history))
	restored[0] = c.messages[0]
	for _, m := range history[1:] {
		if m.Role == llm.RoleSystem {
			continue
		}
		restored = append(restored, m)
	}
	c.messages = restored
	return nil
}

// begin marks the conversation busy and returns a working copy of the
// history for the turn. The copy is only kept when the turn commits.
func (c *Conversation) begin() ([]llm.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrTurnInProgress
	}
	c.busy = true
	return slices.Clone(c.messages), nil
}

func (c *Conversation) commit(working []llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = working
	c.busy = false
}

func (c *Conversation) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}
