package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolCallCopiesArguments(t *testing.T) {
	args := map[string]any{"client_email": "a@x.com", "nested": map[string]any{"k": "v"}}
	c := NewToolCall("crud_client_tool", args)

	args["client_email"] = "changed@x.com"
	args["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, "a@x.com", c.Arguments["client_email"])
	assert.Equal(t, "v", c.Arguments["nested"].(map[string]any)["k"])
	assert.NotEmpty(t, c.ID)
}

func TestWithArgumentProducesNewCall(t *testing.T) {
	c := NewToolCall("book_job_tool", map[string]any{"account_id": "model"})
	c2 := c.WithArgument("account_id", "acct-1")

	assert.Equal(t, "model", c.Arguments["account_id"])
	assert.Equal(t, "acct-1", c2.Arguments["account_id"])
	assert.NotEqual(t, c.ID, c2.ID)
	assert.Equal(t, c.Name, c2.Name)
}

func TestStateQueues(t *testing.T) {
	s := NewState("acct-1", "receptionist_agent", []Message{NewUserMessage("hi")})
	assert.True(t, s.Done())
	assert.False(t, s.Resumable())

	a := NewToolCall("a", nil)
	b := NewToolCall("b", nil)
	s.Pending = []ToolCall{a, b}
	assert.False(t, s.Done())

	s.Suspend(a, "who?")
	assert.True(t, s.Resumable())
	head, ok := s.Head()
	require.True(t, ok)
	assert.Equal(t, a.ID, head.ID)

	req, ok := s.Interrupt()
	require.True(t, ok)
	assert.Equal(t, "a", req.ToolName)
	assert.Equal(t, "who?", req.Reason)

	_, _ = s.PopInterrupt()
	popped, _ := s.PopPending()
	s.Complete(popped, "done a")
	assert.Equal(t, []string{"done a"}, s.Completed)
	require.NotNil(t, s.LastCompleted)
	assert.Equal(t, a.ID, s.LastCompleted.ID)
	assert.Len(t, s.History, 2)
	assert.Equal(t, RoleTool, s.History[1].Role)
}

func TestSessionClone(t *testing.T) {
	sess := NewSession("acct-1")
	sess.History = []Message{NewUserMessage("hello")}
	sess.Suspended = NewState("acct-1", "receptionist_agent", nil)
	sess.Suspended.Suspend(NewToolCall("book_job_tool", map[string]any{"x": 1}), "why")

	c := sess.Clone()
	c.History[0].Content = "changed"
	c.Suspended.Interrupts[0].Reason = "changed"

	assert.Equal(t, "hello", sess.History[0].Content)
	assert.Equal(t, "why", sess.Suspended.Interrupts[0].Reason)
	assert.True(t, sess.IsSuspended())
}
