// Package llm holds the provider-neutral chat types shared by the agent loop,
// the session store and the model adapters.
package llm

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation. An assistant message may carry a
// function call instead of text; a tool message answers the call with the
// same CallID.
type Message struct {
	Role         Role          `json:"role" bson:"role"`
	Content      string        `json:"content,omitempty" bson:"content,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty" bson:"function_call,omitempty"`
	CallID       string        `json:"call_id,omitempty" bson:"call_id,omitempty"`
}

// FunctionCall is a model request to run one registered function.
// Arguments is the raw JSON object sent by the model.
type FunctionCall struct {
	ID        string `json:"id" bson:"id"`
	Name      string `json:"name" bson:"name"`
	Arguments string `json:"arguments" bson:"arguments"`
}

// FunctionDeclaration advertises a callable function to the model.
// Parameters is a JSON schema object.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model     string
	Messages  []Message
	Functions []FunctionDeclaration
}

// ChatReply is one model turn: either text or one or more function calls.
type ChatReply struct {
	Content       string
	FunctionCalls []FunctionCall
	FinishReason  string
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
