package claude

import (
	"context"
	"encoding/json"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

const (
	providerName     = "claude"
	defaultMaxTokens = 1024
)

// ClaudeEngine implements engine.Engine on Anthropic's Messages API.
type ClaudeEngine struct {
	settings *settings.ChatSettings
	client   anthropic.Client
}

var _ engine.Engine = (*ClaudeEngine)(nil)

func NewClaudeEngine(s *settings.ChatSettings, opts ...anthropicopt.RequestOption) (*ClaudeEngine, error) {
	if s == nil || s.Engine == "" {
		return nil, errors.New("no engine specified")
	}
	if s.APIKey == "" {
		return nil, errors.Errorf("missing API key for %s", providerName)
	}
	clientOpts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(s.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)
	return &ClaudeEngine{settings: s, client: anthropic.NewClient(clientOpts...)}, nil
}

func (e *ClaudeEngine) Complete(ctx context.Context, req engine.Request) (*engine.Completion, error) {
	params, err := e.makeParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, engine.Unavailable(providerName, err)
	}

	out := &engine.Completion{}
	for _, cb := range msg.Content {
		switch v := cb.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += v.Text
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(v.Input) > 0 {
				if err := json.Unmarshal(v.Input, &args); err != nil {
					log.Warn().Err(err).Str("tool", v.Name).Msg("dropping tool call with malformed input")
					continue
				}
			}
			out.ToolCalls = append(out.ToolCalls, turns.NewToolCall(v.Name, args))
		}
	}
	log.Debug().
		Str("model", e.settings.Engine).
		Str("stop_reason", string(msg.StopReason)).
		Int("tool_calls", len(out.ToolCalls)).
		Msg("Claude completion finished")
	return out, nil
}

func (e *ClaudeEngine) makeParams(req engine.Request) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.settings.Engine),
		MaxTokens: int64(e.settings.MaxTokensOr(defaultMaxTokens)),
		Messages:  buildMessages(req.History, req.UserText),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if e.settings.Temperature != nil {
		params.Temperature = anthropic.Float(*e.settings.Temperature)
	}

	if len(req.Tools) == 0 || req.ToolChoice == engine.ToolChoiceNone {
		return params, nil
	}
	for _, td := range req.Tools {
		schema, err := engine.ParametersMap(td)
		if err != nil {
			return params, err
		}
		input := anthropic.ToolInputSchemaParam{Properties: schema["properties"]}
		if req, ok := schema["required"].([]interface{}); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					input.Required = append(input.Required, s)
				}
			}
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        td.Name,
				Description: anthropic.String(td.Description),
				InputSchema: input,
			},
		})
	}
	if req.ToolChoice == engine.ToolChoiceRequired {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	} else {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return params, nil
}

// buildMessages renders history plus the user text as alternating user/assistant
// messages, merging consecutive messages of the same role.
func buildMessages(history []turns.Message, userText string) []anthropic.MessageParam {
	type entry struct {
		user  bool
		texts []string
	}
	var entries []entry
	add := func(user bool, text string) {
		if text == "" {
			return
		}
		if n := len(entries); n > 0 && entries[n-1].user == user {
			entries[n-1].texts = append(entries[n-1].texts, text)
			return
		}
		entries = append(entries, entry{user: user, texts: []string{text}})
	}
	for _, m := range history {
		add(engine.ChatRole(m) == turns.RoleUser, engine.RenderContent(m))
	}
	add(true, userText)
	if len(entries) == 0 || !entries[0].user {
		entries = append([]entry{{user: true, texts: []string{"(conversation start)"}}}, entries...)
	}
	if !entries[len(entries)-1].user {
		entries = append(entries, entry{user: true, texts: []string{"Continue."}})
	}

	msgs := make([]anthropic.MessageParam, 0, len(entries))
	for _, en := range entries {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(en.texts))
		for _, t := range en.texts {
			blocks = append(blocks, anthropic.NewTextBlock(t))
		}
		if en.user {
			msgs = append(msgs, anthropic.NewUserMessage(blocks...))
		} else {
			msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
		}
	}
	return msgs
}
