package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// AccountIDArgument is set on every tool call from the session, whatever the model proposed.
const AccountIDArgument = "account_id"

// Plan is the outcome of planning a turn: either an ordered queue of calls or a direct answer.
type Plan struct {
	ToolCalls  []turns.ToolCall
	DirectText string
}

// Direct reports whether the turn ends without running any tool.
func (p Plan) Direct() bool {
	return len(p.ToolCalls) == 0
}

type Planner struct {
	engine       engine.Engine
	registry     tools.ToolRegistry
	systemPrompt string
	priority     []string
	now          func() time.Time
}

type PlannerOption func(*Planner)

func WithSystemPrompt(prompt string) PlannerOption {
	return func(p *Planner) { p.systemPrompt = prompt }
}

// WithPriority sets the tool execution order. Tools not listed run last.
func WithPriority(names ...string) PlannerOption {
	return func(p *Planner) { p.priority = append([]string(nil), names...) }
}

func WithClock(now func() time.Time) PlannerOption {
	return func(p *Planner) { p.now = now }
}

func NewPlanner(e engine.Engine, registry tools.ToolRegistry, options ...PlannerOption) *Planner {
	p := &Planner{
		engine:       e,
		registry:     registry,
		systemPrompt: ReceptionistPrompt,
		now:          time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Plan asks the model which tools to run for userInput. history must not contain userInput yet.
func (p *Planner) Plan(ctx context.Context, history []turns.Message, userInput string, sessionID string) (Plan, error) {
	completion, err := p.engine.Complete(ctx, engine.Request{
		SystemPrompt: p.prompt(),
		History:      history,
		UserText:     userInput,
		Tools:        p.registry.ListTools(),
		ToolChoice:   engine.ToolChoiceAuto,
	})
	if err != nil {
		return Plan{}, engine.AsUnavailable(err)
	}

	calls := OrderCalls(completion.ToolCalls, p.priority, sessionID)
	log.Debug().
		Str("session_id", sessionID).
		Int("proposed", len(completion.ToolCalls)).
		Strs("queue", callNames(calls)).
		Msg("planned turn")

	if len(calls) == 0 {
		return Plan{DirectText: completion.Text}, nil
	}
	return Plan{ToolCalls: calls}, nil
}

func (p *Planner) prompt() string {
	return fmt.Sprintf("%s\n\nThe current date and time is %s.", p.systemPrompt, p.now().Format("Monday, 2006-01-02 15:04"))
}

// OrderCalls scopes every call to sessionID, keeps only the last proposal per tool
// name and sorts the survivors by priority. Unlisted tools keep their relative order
// behind the listed ones.
func OrderCalls(calls []turns.ToolCall, priority []string, sessionID string) []turns.ToolCall {
	last := map[string]int{}
	for i, c := range calls {
		last[c.Name] = i
	}

	out := make([]turns.ToolCall, 0, len(last))
	for i, c := range calls {
		if last[c.Name] != i {
			continue
		}
		out = append(out, c.WithArgument(AccountIDArgument, sessionID))
	}

	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		rank[name] = i
	}
	rankOf := func(name string) int {
		if r, ok := rank[name]; ok {
			return r
		}
		return len(priority)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].Name) < rankOf(out[j].Name)
	})
	return out
}

func callNames(calls []turns.ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return names
}
