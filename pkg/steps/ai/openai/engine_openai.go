package openai

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

const providerName = "openai"

// OpenAIEngine issues chat completions with function tools against the OpenAI API
// or any compatible endpoint.
type OpenAIEngine struct {
	settings *settings.ChatSettings
	client   *go_openai.Client
}

var _ engine.Engine = (*OpenAIEngine)(nil)

func NewOpenAIEngine(s *settings.ChatSettings) (*OpenAIEngine, error) {
	if s == nil || s.Engine == "" {
		return nil, errors.New("no engine specified")
	}
	client, err := MakeClient(s)
	if err != nil {
		return nil, err
	}
	return &OpenAIEngine{settings: s, client: client}, nil
}

func MakeClient(s *settings.ChatSettings) (*go_openai.Client, error) {
	if s.APIKey == "" {
		return nil, errors.Errorf("missing API key for %s", providerName)
	}
	config := go_openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		config.BaseURL = s.BaseURL
	}
	return go_openai.NewClientWithConfig(config), nil
}

func (e *OpenAIEngine) Complete(ctx context.Context, req engine.Request) (*engine.Completion, error) {
	chatReq, err := e.makeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, *chatReq)
	if err != nil {
		return nil, engine.Unavailable(providerName, err)
	}
	if len(resp.Choices) == 0 {
		return nil, engine.Unavailable(providerName, errors.New("no choices in response"))
	}

	msg := resp.Choices[0].Message
	out := &engine.Completion{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		args, err := engine.ParseArguments(tc.Function.Arguments)
		if err != nil {
			log.Warn().Err(err).Str("tool", tc.Function.Name).Msg("dropping tool call with malformed arguments")
			continue
		}
		out.ToolCalls = append(out.ToolCalls, turns.NewToolCall(tc.Function.Name, args))
	}
	log.Debug().
		Str("model", chatReq.Model).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Int("tool_calls", len(out.ToolCalls)).
		Msg("OpenAI completion finished")
	return out, nil
}

func (e *OpenAIEngine) makeRequest(req engine.Request) (*go_openai.ChatCompletionRequest, error) {
	var msgs []go_openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.History {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    string(engine.ChatRole(m)),
			Content: engine.RenderContent(m),
		})
	}
	if req.UserText != "" {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleUser,
			Content: req.UserText,
		})
	}

	chatReq := &go_openai.ChatCompletionRequest{
		Model:     e.settings.Engine,
		Messages:  msgs,
		MaxTokens: e.settings.MaxResponseTokens,
	}
	if e.settings.Temperature != nil {
		chatReq.Temperature = float32(*e.settings.Temperature)
	}

	if len(req.Tools) > 0 && req.ToolChoice != engine.ToolChoiceNone {
		var openaiTools []go_openai.Tool
		for _, td := range req.Tools {
			params, err := engine.ParametersMap(td)
			if err != nil {
				return nil, err
			}
			openaiTools = append(openaiTools, go_openai.Tool{
				Type: go_openai.ToolTypeFunction,
				Function: &go_openai.FunctionDefinition{
					Name:        td.Name,
					Description: td.Description,
					Parameters:  params,
				},
			})
		}
		chatReq.Tools = openaiTools

		switch req.ToolChoice {
		case engine.ToolChoiceRequired:
			chatReq.ToolChoice = "required"
		default:
			chatReq.ToolChoice = "auto"
		}
	}
	return chatReq, nil
}
