package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/events"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

var (
	// ErrNotSuspended is returned when a resumption arrives for a turn that is not paused.
	ErrNotSuspended = errors.New("turn is not suspended")
	// ErrClarificationExhausted is returned when the helper never proposed a tool call.
	ErrClarificationExhausted = errors.New("clarification attempts exhausted")
)

const DefaultMaxClarificationAttempts = 3

// Step is what the caller gets back after the runner stops: either the queue
// drained, or the turn is paused on Prompt.
type Step struct {
	Suspended bool
	Prompt    string
}

// Runner executes the pending queue of a turn one call at a time and resolves
// suspensions with a helper completion.
type Runner struct {
	registry     tools.ToolRegistry
	helper       engine.Engine
	helperPrompt string
	maxAttempts  int
	sink         events.Sink
}

type RunnerOption func(*Runner)

func WithHelperPrompt(prompt string) RunnerOption {
	return func(r *Runner) { r.helperPrompt = prompt }
}

// WithMaxClarificationAttempts bounds how many times the helper is re-prompted for a tool call.
func WithMaxClarificationAttempts(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithEventSink(sink events.Sink) RunnerOption {
	return func(r *Runner) {
		if sink != nil {
			r.sink = sink
		}
	}
}

func NewRunner(registry tools.ToolRegistry, helper engine.Engine, options ...RunnerOption) *Runner {
	r := &Runner{
		registry:     registry,
		helper:       helper,
		helperPrompt: HelperPrompt,
		maxAttempts:  DefaultMaxClarificationAttempts,
		sink:         events.NullSink{},
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// RunNext drains the pending queue until it is empty or a tool needs input. A call
// that needs input stays at the head of the queue.
func (r *Runner) RunNext(ctx context.Context, st *turns.State) (Step, error) {
	if req, ok := st.Interrupt(); ok {
		return Step{Suspended: true, Prompt: req.Reason}, nil
	}

	for {
		call, ok := st.Head()
		if !ok {
			return Step{}, nil
		}

		res, err := r.invoke(ctx, call)
		if err != nil {
			return Step{}, err
		}
		if res.IsNeedsInput() {
			st.Suspend(call, res.Message)
			r.publish(ctx, st, events.EventTypeToolNeedsInput, call.Name, res.Message)
			return Step{Suspended: true, Prompt: res.Message}, nil
		}

		st.PopPending()
		st.Complete(call, res.Message)
		r.publish(ctx, st, events.EventTypeToolCompleted, call.Name, res.Message)
	}
}

// Resume feeds the human's answer to the head suspension through the helper,
// runs the call it proposes and, once the suspended call resolves, continues the queue.
func (r *Runner) Resume(ctx context.Context, st *turns.State, humanText string) (Step, error) {
	req, ok := st.Interrupt()
	if !ok {
		return Step{}, ErrNotSuspended
	}
	if len(st.Interrupts) > 1 {
		log.Warn().
			Str("session_id", st.SessionID).
			Int("dropped", len(st.Interrupts)-1).
			Msg("more than one suspension queued, keeping the head")
		st.Interrupts = st.Interrupts[:1]
	}

	original, ok := st.Head()
	if !ok {
		// the pending call was lost, rebuild it from the suspension
		original = turns.NewToolCall(req.ToolName, req.Arguments)
		st.Pending = []turns.ToolCall{original}
	}

	proposed, err := r.clarify(ctx, st, req, humanText)
	if err != nil {
		return Step{}, err
	}
	call := proposed.WithArgument(AccountIDArgument, st.SessionID)

	res, err := r.invoke(ctx, call)
	if err != nil {
		return Step{}, err
	}

	if call.Name == original.Name {
		if res.IsNeedsInput() {
			return r.resuspend(ctx, st, call, res.Message, true), nil
		}
		return r.resolve(ctx, st, call, res.Message)
	}

	if res.IsNeedsInput() {
		return r.resuspend(ctx, st, call, res.Message, false), nil
	}
	st.Complete(call, res.Message)
	r.publish(ctx, st, events.EventTypeToolCompleted, call.Name, res.Message)

	retry := original.WithArgument(AccountIDArgument, st.SessionID)
	res, err = r.invoke(ctx, retry)
	if err != nil {
		return Step{}, err
	}
	if res.IsNeedsInput() {
		return r.resuspend(ctx, st, retry, res.Message, true), nil
	}
	return r.resolve(ctx, st, retry, res.Message)
}

// resuspend replaces the head suspension. When replacePending is set the call also
// takes the place of the pending head so the corrected arguments are what gets retried.
func (r *Runner) resuspend(ctx context.Context, st *turns.State, call turns.ToolCall, reason string, replacePending bool) Step {
	st.Interrupts[0] = turns.NewSuspendedRequest(call, reason)
	if replacePending {
		st.Pending[0] = call
	}
	r.publish(ctx, st, events.EventTypeToolNeedsInput, call.Name, reason)
	return Step{Suspended: true, Prompt: reason}
}

func (r *Runner) resolve(ctx context.Context, st *turns.State, call turns.ToolCall, message string) (Step, error) {
	st.PopInterrupt()
	st.PopPending()
	st.Complete(call, message)
	r.publish(ctx, st, events.EventTypeToolCompleted, call.Name, message)
	return r.RunNext(ctx, st)
}

func (r *Runner) clarify(ctx context.Context, st *turns.State, req turns.SuspendedRequest, humanText string) (turns.ToolCall, error) {
	args, err := json.Marshal(req.Arguments)
	if err != nil {
		return turns.ToolCall{}, errors.Wrap(err, "failed to encode suspended arguments")
	}
	prompt := fmt.Sprintf(
		"The tool call was for %s with arguments %s. The query was: %s. The human has responded to the query with the following: %s",
		req.ToolName, args, req.Reason, humanText)

	request := engine.Request{
		SystemPrompt: r.helperPrompt,
		History:      st.History,
		UserText:     prompt,
		Tools:        r.registry.ListTools(),
		ToolChoice:   engine.ToolChoiceRequired,
	}
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		completion, err := r.helper.Complete(ctx, request)
		if err != nil {
			return turns.ToolCall{}, engine.AsUnavailable(err)
		}
		if completion.HasToolCalls() {
			log.Debug().
				Str("session_id", st.SessionID).
				Str("suspended_tool", req.ToolName).
				Str("proposed_tool", completion.ToolCalls[0].Name).
				Int("attempt", attempt).
				Msg("helper proposed a tool call")
			return completion.ToolCalls[0], nil
		}
		log.Debug().Str("session_id", st.SessionID).Int("attempt", attempt).Msg("helper proposed no tool call")
	}
	return turns.ToolCall{}, errors.Wrapf(ErrClarificationExhausted, "no tool call after %d attempts", r.maxAttempts)
}

func (r *Runner) invoke(ctx context.Context, call turns.ToolCall) (tools.Result, error) {
	td, err := r.registry.GetTool(call.Name)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			log.Warn().Str("tool", call.Name).Msg("model proposed an unknown tool")
			return tools.Completedf("Unknown tool %s", call.Name), nil
		}
		return tools.Result{}, err
	}

	log.Debug().Str("tool", call.Name).Str("call_id", call.ID).Msg("invoking tool")
	res, err := td.Invoke(ctx, call.Args())
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "tool %s failed", call.Name)
	}
	return res, nil
}

func (r *Runner) publish(ctx context.Context, st *turns.State, t events.EventType, tool, message string) {
	e := events.NewEvent(t, st.SessionID).WithAgent(st.Agent).WithTool(tool, message)
	if err := r.sink.PublishEvent(ctx, e); err != nil {
		log.Warn().Err(err).Str("event_type", string(t)).Msg("failed to publish tool event")
	}
}
