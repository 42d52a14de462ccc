package engine

import (
	"context"

	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// Engine is the completion collaborator: it maps a system prompt, conversation
// history, user text and a set of tool schemas to free text and/or proposed tool calls.
type Engine interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// ToolChoice controls whether the model may, must, or must not call tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// Request is a single completion request.
type Request struct {
	SystemPrompt string
	History      []turns.Message
	UserText     string
	Tools        []tools.ToolDefinition
	ToolChoice   ToolChoice
}

// Completion is the model output. Either field may be empty.
type Completion struct {
	Text      string
	ToolCalls []turns.ToolCall
}

// HasToolCalls reports whether the model proposed at least one call.
func (c *Completion) HasToolCalls() bool {
	return c != nil && len(c.ToolCalls) > 0
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req Request) (*Completion, error)

func (f EngineFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f(ctx, req)
}
