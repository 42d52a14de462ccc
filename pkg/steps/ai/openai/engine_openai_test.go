package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
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

func lookup(ctx context.Context, in lookupInput) (tools.Result, error) {
	return tools.Completed(in.Email), nil
}

func TestCompleteSendsToolsAndParsesCalls(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-test",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "lookup", "arguments": "{\"email\":\"a@x.com\"}"}
					}, {
						"id": "call_2",
						"type": "function",
						"function": {"name": "lookup", "arguments": "not json"}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEngine(&settings.ChatSettings{Engine: "gpt-test", APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	td := tools.MustNewToolFromFunc("lookup", "Look up a client", lookup)
	c, err := e.Complete(context.Background(), engine.Request{
		SystemPrompt: "be nice",
		History:      []turns.Message{turns.NewUserMessage("earlier"), turns.NewToolMessage("lookup", "found")},
		UserText:     "find a@x.com",
		Tools:        []tools.ToolDefinition{*td},
		ToolChoice:   engine.ToolChoiceRequired,
	})
	require.NoError(t, err)

	require.Len(t, c.ToolCalls, 1)
	assert.Equal(t, "lookup", c.ToolCalls[0].Name)
	assert.Equal(t, "a@x.com", c.ToolCalls[0].Arguments["email"])

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, "required", got["tool_choice"])
	msgs := got["messages"].([]interface{})
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]interface{})["role"])
	assert.Equal(t, "[lookup result] found", msgs[2].(map[string]interface{})["content"])
	toolsSent := got["tools"].([]interface{})
	require.Len(t, toolsSent, 1)
}

func TestCompleteReportsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEngine(&settings.ChatSettings{Engine: "gpt-test", APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.Complete(context.Background(), engine.Request{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrModelUnavailable))
}

func TestNewOpenAIEngineRequiresKey(t *testing.T) {
	_, err := NewOpenAIEngine(&settings.ChatSettings{Engine: "gpt-test"})
	assert.Error(t, err)
	_, err = NewOpenAIEngine(nil)
	assert.Error(t, err)
}
