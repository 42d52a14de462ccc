package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("openai", cause)

	assert.True(t, errors.Is(err, ErrModelUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "openai")
	assert.Nil(t, Unavailable("openai", nil))

	wrapped := errors.Wrap(err, "planner")
	assert.True(t, errors.Is(wrapped, ErrModelUnavailable))
}

func TestAsUnavailable(t *testing.T) {
	err := AsUnavailable(errors.New("boom"))
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	already := Unavailable("claude", errors.New("overloaded"))
	assert.Equal(t, already, AsUnavailable(already))

	assert.Equal(t, context.Canceled, AsUnavailable(context.Canceled))
	assert.Nil(t, AsUnavailable(nil))
}

func TestHistoryRendering(t *testing.T) {
	m := turns.NewToolMessage("crud_client_tool", "Client a@x.com created successfully")
	assert.Equal(t, turns.RoleAssistant, ChatRole(m))
	assert.Equal(t, "[crud_client_tool result] Client a@x.com created successfully", RenderContent(m))
	assert.Equal(t, turns.RoleUser, ChatRole(turns.NewUserMessage("hi")))

	tr := Transcript([]turns.Message{turns.NewUserMessage("hi"), m})
	assert.Equal(t, "user: hi\ntool(crud_client_tool): Client a@x.com created successfully\n", tr)
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(`{"client_email":"a@x.com"}`)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", args["client_email"])

	args, err = ParseArguments("")
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = ParseArguments("[1,2]")
	assert.Error(t, err)
}
