package turns

import (
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-clone"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a session's conversation history.
type Message struct {
	Role    Role   `json:"role" bson:"role"`
	Name    string `json:"name,omitempty" bson:"name,omitempty"`
	Content string `json:"content" bson:"content"`
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage records the outcome of a tool invocation in the history.
func NewToolMessage(tool, content string) Message {
	return Message{Role: RoleTool, Name: tool, Content: content}
}

// ToolCall is a single proposed tool invocation. A ToolCall is never mutated
// after creation; a corrected retry is a new ToolCall with its own ID.
type ToolCall struct {
	ID        string         `json:"id" bson:"id"`
	Name      string         `json:"name" bson:"name"`
	Arguments map[string]any `json:"arguments" bson:"arguments"`
}

// NewToolCall deep-copies args so later changes by the caller do not leak into the call.
func NewToolCall(name string, args map[string]any) ToolCall {
	return ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: copyArgs(args),
	}
}

// WithArgument returns a new ToolCall (with a fresh ID) where key is set to value.
func (c ToolCall) WithArgument(key string, value any) ToolCall {
	args := copyArgs(c.Arguments)
	args[key] = value
	return ToolCall{ID: uuid.NewString(), Name: c.Name, Arguments: args}
}

// Args returns a copy of the call arguments.
func (c ToolCall) Args() map[string]any {
	return copyArgs(c.Arguments)
}

func copyArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return clone.Clone(args).(map[string]any)
}

// SuspendedRequest is a question a tool put to the human before it could complete.
type SuspendedRequest struct {
	ToolName  string         `json:"tool_name" bson:"tool_name"`
	Arguments map[string]any `json:"arguments" bson:"arguments"`
	Reason    string         `json:"reason" bson:"reason"`
}

func NewSuspendedRequest(call ToolCall, reason string) SuspendedRequest {
	return SuspendedRequest{
		ToolName:  call.Name,
		Arguments: copyArgs(call.Arguments),
		Reason:    reason,
	}
}

// State is the unit of execution for one user message and its resumptions.
type State struct {
	SessionID     string             `json:"session_id" bson:"session_id"`
	Agent         string             `json:"agent" bson:"agent"`
	History       []Message          `json:"-" bson:"-"`
	Pending       []ToolCall         `json:"pending" bson:"pending"`
	Completed     []string           `json:"completed" bson:"completed"`
	LastCompleted *ToolCall          `json:"last_completed,omitempty" bson:"last_completed,omitempty"`
	Interrupts    []SuspendedRequest `json:"interrupts" bson:"interrupts"`
}

// NewState seeds a fresh turn with the session history.
func NewState(sessionID, agent string, history []Message) *State {
	h := make([]Message, len(history))
	copy(h, history)
	return &State{SessionID: sessionID, Agent: agent, History: h}
}

// Resumable reports whether the turn is paused waiting for a human answer.
func (s *State) Resumable() bool {
	return len(s.Interrupts) > 0
}

// Done reports whether nothing is left to run or resolve.
func (s *State) Done() bool {
	return len(s.Pending) == 0 && len(s.Interrupts) == 0
}

// Head returns the next pending call.
func (s *State) Head() (ToolCall, bool) {
	if len(s.Pending) == 0 {
		return ToolCall{}, false
	}
	return s.Pending[0], true
}

// PopPending removes the head of the pending queue and returns it.
func (s *State) PopPending() (ToolCall, bool) {
	if len(s.Pending) == 0 {
		return ToolCall{}, false
	}
	c := s.Pending[0]
	s.Pending = s.Pending[1:]
	return c, true
}

// Suspend queues a clarification request for call.
func (s *State) Suspend(call ToolCall, reason string) {
	s.Interrupts = append(s.Interrupts, NewSuspendedRequest(call, reason))
}

// Interrupt returns the head of the interrupt queue.
func (s *State) Interrupt() (SuspendedRequest, bool) {
	if len(s.Interrupts) == 0 {
		return SuspendedRequest{}, false
	}
	return s.Interrupts[0], true
}

// PopInterrupt removes the head of the interrupt queue.
func (s *State) PopInterrupt() (SuspendedRequest, bool) {
	if len(s.Interrupts) == 0 {
		return SuspendedRequest{}, false
	}
	r := s.Interrupts[0]
	s.Interrupts = s.Interrupts[1:]
	return r, true
}

// Complete records a finished call and its result message.
func (s *State) Complete(call ToolCall, message string) {
	c := call
	s.LastCompleted = &c
	s.Completed = append(s.Completed, message)
	s.History = append(s.History, NewToolMessage(call.Name, message))
}

// Append adds a message to the turn history.
func (s *State) Append(m Message) {
	s.History = append(s.History, m)
}

// Session is what the session store persists for one account.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	History   []Message `json:"history" bson:"history"`
	Suspended *State    `json:"suspended,omitempty" bson:"suspended,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// IsSuspended reports whether a turn is paused on this session.
func (s *Session) IsSuspended() bool {
	return s.Suspended != nil && s.Suspended.Resumable()
}

// Clone returns a deep copy so a failed turn can be discarded without touching the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	return clone.Clone(s).(*Session)
}
