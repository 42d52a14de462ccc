package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

type lookupInput struct {
	Email string `json:"email"`
}

func TestCompleteParsesToolUse(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "toolu_1", "name": "lookup", "input": {"email": "a@x.com"}}
			],
			"stop_reason": "tool_use",
			"stop_sequence": null,
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	}))
	defer srv.Close()

	e, err := NewClaudeEngine(
		&settings.ChatSettings{Engine: "claude-test", APIKey: "k", BaseURL: srv.URL},
		anthropicopt.WithMaxRetries(0),
	)
	require.NoError(t, err)

	td := tools.MustNewToolFromFunc("lookup", "Look up a client", func(ctx context.Context, in lookupInput) (tools.Result, error) {
		return tools.Completed(in.Email), nil
	})
	c, err := e.Complete(context.Background(), engine.Request{
		SystemPrompt: "be nice",
		UserText:     "find a@x.com",
		Tools:        []tools.ToolDefinition{*td},
		ToolChoice:   engine.ToolChoiceRequired,
	})
	require.NoError(t, err)

	assert.Equal(t, "Let me check.", c.Text)
	require.Len(t, c.ToolCalls, 1)
	assert.Equal(t, "lookup", c.ToolCalls[0].Name)
	assert.Equal(t, "a@x.com", c.ToolCalls[0].Arguments["email"])

	assert.Equal(t, "claude-test", got["model"])
	choice := got["tool_choice"].(map[string]interface{})
	assert.Equal(t, "any", choice["type"])
	sentTools := got["tools"].([]interface{})
	require.Len(t, sentTools, 1)
	assert.Equal(t, "lookup", sentTools[0].(map[string]interface{})["name"])
}

func TestBuildMessagesAlternates(t *testing.T) {
	msgs := buildMessages([]turns.Message{
		turns.NewAssistantMessage("welcome"),
		turns.NewUserMessage("book me"),
		turns.NewUserMessage("please"),
		turns.NewToolMessage("book_job_tool", "booked"),
	}, "")

	require.Len(t, msgs, 5)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	assert.Len(t, msgs[2].Content, 2)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[3].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[4].Role)
}
