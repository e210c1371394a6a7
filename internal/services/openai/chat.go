package openai

import (
	"context"
	"fmt"

	"github.com/socialchef/gramz/internal/llm"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Tools          []tool          `json:"tools,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   *string    `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func toWireMessages(messages []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		content := m.Content
		wm := chatMessage{Role: string(m.Role), Content: &content}
		switch {
		case m.Role == llm.RoleAssistant && m.FunctionCall != nil:
			var tc toolCall
			tc.ID = m.FunctionCall.ID
			tc.Type = "function"
			tc.Function.Name = m.FunctionCall.Name
			tc.Function.Arguments = m.FunctionCall.Arguments
			wm.ToolCalls = []toolCall{tc}
			if m.Content == "" {
				wm.Content = nil
			}
		case m.Role == llm.RoleTool:
			wm.ToolCallID = m.CallID
		}
		out = append(out, wm)
	}
	return out
}

func toTools(decls []llm.FunctionDeclaration) []tool {
	if len(decls) == 0 {
		return nil
	}
	tools := make([]tool, 0, len(decls))
	for _, d := range decls {
		tools = append(tools, tool{
			Type: "function",
			Function: toolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return tools
}

// Chat sends the conversation and the declared functions to the chat
// completions endpoint and returns the first choice.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatReply, error) {
	model := req.Model
	if model == "" {
		model = c.chatModel
	}

	var resp chatResponse
	err := c.post(ctx, "/chat/completions", chatRequest{
		Model:    model,
		Messages: toWireMessages(req.Messages),
		Tools:    toTools(req.Functions),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoResponse
	}

	choice := resp.Choices[0]
	reply := &llm.ChatReply{FinishReason: choice.FinishReason}
	if choice.Message.Content != nil {
		reply.Content = *choice.Message.Content
	}
	for _, tc := range choice.Message.ToolCalls {
		reply.FunctionCalls = append(reply.FunctionCalls, llm.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return reply, nil
}

// Complete runs a single system+user prompt without tools. With jsonMode the
// model is asked for a JSON object.
func (c *Client) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: &systemPrompt},
			{Role: "user", Content: &userContent},
		},
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil || *resp.Choices[0].Message.Content == "" {
		return "", ErrNoResponse
	}
	return *resp.Choices[0].Message.Content, nil
}
