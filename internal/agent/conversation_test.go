package agent

import (
	"testing"

	"github.com/socialchef/gramz/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSystem(msgs []llm.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			n++
		}
	}
	return n
}

func TestNewConversation(t *testing.T) {
	conv := NewConversation("Du är Gramz")
	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, llm.SystemMessage("Du är Gramz"), msgs[0])
	assert.Equal(t, "Du är Gramz", conv.SystemPrompt())
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	conv := NewConversation("sys")
	msgs := conv.Messages()
	msgs[0].Content = "changed"
	assert.Equal(t, "sys", conv.Messages()[0].Content)
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation("sys")
	working, err := conv.begin()
	require.NoError(t, err)
	conv.commit(append(working, llm.UserMessage("hej"), llm.AssistantMessage("hallå")))
	require.Equal(t, 3, conv.Len())

	require.NoError(t, conv.Reset())
	assert.Equal(t, []llm.Message{llm.SystemMessage("sys")}, conv.Messages())
}

func TestConversation_RestoreKeepsSingleSystemMessage(t *testing.T) {
	conv := NewConversation("current prompt")
	err := conv.Restore([]llm.Message{
		llm.SystemMessage("old prompt"),
		llm.UserMessage("hej"),
		llm.SystemMessage("injected"),
		llm.AssistantMessage("hallå"),
	})
	require.NoError(t, err)

	msgs := conv.Messages()
	assert.Equal(t, 1, countSystem(msgs))
	assert.Equal(t, llm.SystemMessage("current prompt"), msgs[0])
	assert.Equal(t, []llm.Message{
		llm.SystemMessage("current prompt"),
		llm.UserMessage("hej"),
		llm.AssistantMessage("hallå"),
	}, msgs)
}

func TestConversation_RestoreRejectsHistoryWithoutSystemFirst(t *testing.T) {
	conv := NewConversation("sys")
	assert.ErrorIs(t, conv.Restore(nil), ErrInvalidHistory)
	assert.ErrorIs(t, conv.Restore([]llm.Message{llm.UserMessage("hej")}), ErrInvalidHistory)
	assert.Equal(t, 1, conv.Len())
}

func TestConversation_BusyRejectsSecondTurn(t *testing.T) {
	conv := NewConversation("sys")
	_, err := conv.begin()
	require.NoError(t, err)

	_, err = conv.begin()
	assert.ErrorIs(t, err, ErrTurnInProgress)
	assert.ErrorIs(t, conv.Reset(), ErrTurnInProgress)
	assert.ErrorIs(t, conv.Restore([]llm.Message{llm.SystemMessage("x")}), ErrTurnInProgress)

	conv.abort()
	_, err = conv.begin()
	assert.NoError(t, err)
}
