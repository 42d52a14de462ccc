package gemini

import (
	"context"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
	"google.golang.org/api/option"
)

const providerName = "gemini"

// GeminiEngine implements engine.Engine for Google's Gemini API.
type GeminiEngine struct {
	settings *settings.ChatSettings
}

var _ engine.Engine = (*GeminiEngine)(nil)

func NewGeminiEngine(s *settings.ChatSettings) (*GeminiEngine, error) {
	if s == nil || s.Engine == "" {
		return nil, errors.New("no engine specified")
	}
	if s.APIKey == "" {
		return nil, errors.Errorf("missing API key for %s", providerName)
	}
	return &GeminiEngine{settings: s}, nil
}

func (e *GeminiEngine) Complete(ctx context.Context, req engine.Request) (*engine.Completion, error) {
	opts := []option.ClientOption{option.WithAPIKey(e.settings.APIKey)}
	if e.settings.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(e.settings.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, engine.Unavailable(providerName, errors.Wrap(err, "failed to create gemini client"))
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close gemini client")
		}
	}()

	model := client.GenerativeModel(e.settings.Engine)
	e.configure(model, req)

	cs := model.StartChat()
	cs.History = buildHistory(req.History)

	userText := req.UserText
	if userText == "" {
		userText = "Continue."
	}
	resp, err := cs.SendMessage(ctx, genai.Text(userText))
	if err != nil {
		return nil, engine.Unavailable(providerName, err)
	}

	out := &engine.Completion{}
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, p := range cand.Content.Parts {
				switch v := p.(type) {
				case genai.Text:
					out.Text += string(v)
				case genai.FunctionCall:
					args := v.Args
					if args == nil {
						args = map[string]any{}
					}
					out.ToolCalls = append(out.ToolCalls, turns.NewToolCall(v.Name, args))
				}
			}
			// only the first candidate with content is used
			break
		}
	}
	log.Debug().Str("model", e.settings.Engine).Int("tool_calls", len(out.ToolCalls)).Msg("Gemini completion finished")
	return out, nil
}

func (e *GeminiEngine) configure(model *genai.GenerativeModel, req engine.Request) {
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	if e.settings.Temperature != nil {
		v := float32(*e.settings.Temperature)
		model.Temperature = &v
	}
	if e.settings.MaxResponseTokens > 0 {
		v := int32(e.settings.MaxResponseTokens)
		model.MaxOutputTokens = &v
	}

	if len(req.Tools) == 0 || req.ToolChoice == engine.ToolChoiceNone {
		return
	}
	var decls []*genai.FunctionDeclaration
	for _, td := range req.Tools {
		params, err := engine.ParametersMap(td)
		if err != nil {
			log.Warn().Err(err).Str("tool", td.Name).Msg("skipping tool with unusable schema")
			continue
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        td.Name,
			Description: td.Description,
			Parameters:  convertSchema(params),
		})
	}
	model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	if req.ToolChoice == engine.ToolChoiceRequired {
		model.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingAny},
		}
	}
}

// buildHistory maps history onto user/model contents. Consecutive messages with the
// same role are merged since Gemini expects alternating turns.
func buildHistory(history []turns.Message) []*genai.Content {
	var out []*genai.Content
	for _, m := range history {
		role := "user"
		if engine.ChatRole(m) != turns.RoleUser {
			role = "model"
		}
		text := genai.Text(engine.RenderContent(m))
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, text)
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{text}})
	}
	if len(out) > 0 && out[0].Role != "user" {
		out = append([]*genai.Content{{Role: "user", Parts: []genai.Part{genai.Text("(conversation start)")}}}, out...)
	}
	return out
}

// convertSchema converts a JSON schema object into a Gemini Schema (common types only).
func convertSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	gs := &genai.Schema{}
	if d, ok := m["description"].(string); ok {
		gs.Description = d
	}
	if enum, ok := m["enum"].([]interface{}); ok {
		for _, v := range enum {
			if s, ok := v.(string); ok {
				gs.Enum = append(gs.Enum, s)
			}
		}
	}

	t, _ := m["type"].(string)
	switch t {
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	case "array":
		gs.Type = genai.TypeArray
		if items, ok := m["items"].(map[string]interface{}); ok {
			gs.Items = convertSchema(items)
		} else {
			gs.Items = &genai.Schema{Type: genai.TypeString}
		}
	default:
		gs.Type = genai.TypeObject
		if props, ok := m["properties"].(map[string]interface{}); ok && len(props) > 0 {
			gs.Properties = map[string]*genai.Schema{}
			for k, v := range props {
				if pm, ok := v.(map[string]interface{}); ok {
					gs.Properties[k] = convertSchema(pm)
				}
			}
		}
		if req, ok := m["required"].([]interface{}); ok {
			for _, v := range req {
				if s, ok := v.(string); ok {
					gs.Required = append(gs.Required, s)
				}
			}
		}
	}
	return gs
}
