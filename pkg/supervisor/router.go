package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// RouteTool is the single tool the router model is forced to call.
const RouteTool = "route_request"

// Router picks exactly one agent per incoming message.
type Router struct {
	engine       engine.Engine
	labels       []string
	defaultAgent string
	tool         tools.ToolDefinition
	prompt       string
}

func NewRouter(e engine.Engine, defaultAgent string, agents ...*agent.Agent) *Router {
	labels := make([]string, 0, len(agents))
	enum := make([]interface{}, 0, len(agents))
	var sb strings.Builder
	sb.WriteString("You are a supervisor that routes each user request to exactly one agent. ")
	sb.WriteString("Given the conversation and the request, call route_request with the agent that should act next. ")
	sb.WriteString("The agents are:\n")
	for _, a := range agents {
		labels = append(labels, a.Name)
		enum = append(enum, a.Name)
		fmt.Fprintf(&sb, "- %s: %s\n", a.Name, a.Description)
	}
	fmt.Fprintf(&sb, "Route to %s if you are unclear what to do with the request.", defaultAgent)

	props := jsonschema.NewProperties()
	props.Set("agent", &jsonschema.Schema{
		Type:        "string",
		Description: "Name of the agent that handles the request",
		Enum:        enum,
	})

	return &Router{
		engine:       e,
		labels:       labels,
		defaultAgent: defaultAgent,
		prompt:       sb.String(),
		tool: tools.ToolDefinition{
			Name:        RouteTool,
			Description: "Route the request to one agent.",
			Parameters:  &jsonschema.Schema{Type: "object", Properties: props, Required: []string{"agent"}},
		},
	}
}

// Route returns the agent for text. Anything other than a known label falls back
// to the default agent; only a model failure is an error.
func (r *Router) Route(ctx context.Context, history []turns.Message, text string) (string, error) {
	completion, err := r.engine.Complete(ctx, engine.Request{
		SystemPrompt: r.prompt,
		History:      history,
		UserText:     text,
		Tools:        []tools.ToolDefinition{r.tool},
		ToolChoice:   engine.ToolChoiceRequired,
	})
	if err != nil {
		return "", engine.AsUnavailable(err)
	}

	for _, call := range completion.ToolCalls {
		if call.Name != RouteTool {
			continue
		}
		label, _ := call.Arguments["agent"].(string)
		for _, l := range r.labels {
			if l == label {
				return label, nil
			}
		}
		log.Debug().Str("label", label).Msg("router returned an unknown agent, using default")
		break
	}
	return r.defaultAgent, nil
}
