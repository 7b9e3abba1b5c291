package domain

import (
	"context"
	"encoding/json"
)

// ToolDef is a provider-agnostic tool definition following the OpenAI
// function calling schema. Tool definitions are immutable and safe for
// concurrent read access.
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function name, description and parameter schema.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON Schema object describing a tool's input.
type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolParamDef `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

// ToolParamDef describes a single parameter in JSON Schema form.
type ToolParamDef struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Items       *ToolParamDef `json:"items,omitempty"`
	MinItems    int           `json:"minItems,omitempty"`
}

// ChatMessage is one turn of a tool-calling conversation. Regular
// messages use Role + Content. Tool results carry ToolCallID and
// ToolName; assistant messages that requested tools carry ToolCalls.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ChatResult is the model's response for one decision step.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatModel is the narrow interface the resolution loop depends on.
// Implementations send one chat-completion request with tool use forced
// and return the model's tool calls for that step.
type ChatModel interface {
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDef) (*ChatResult, error)
}
