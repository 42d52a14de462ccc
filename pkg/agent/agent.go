// Package agent implements one specialised agent: a Planner that turns a user message
// into an ordered queue of tool calls, a Runner that executes the queue and pauses when
// a tool needs human input, and a Synthesizer that writes the final reply.
package agent

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

const (
	ReceptionistAgent  = "receptionist_agent"
	KnowledgeBaseAgent = "knowledge_base_agent"
)

// Reply is the outward result of a turn.
type Reply struct {
	Text      string
	Suspended bool
}

type Agent struct {
	Name        string
	Description string

	planner *Planner
	runner  *Runner
	synth   *Synthesizer
}

func New(name, description string, planner *Planner, runner *Runner, synth *Synthesizer) *Agent {
	return &Agent{
		Name:        name,
		Description: description,
		planner:     planner,
		runner:      runner,
		synth:       synth,
	}
}

// ProcessTurn runs one user message against sess. The session is modified in place;
// on error the caller is expected to discard it.
func (a *Agent) ProcessTurn(ctx context.Context, sess *turns.Session, text string, resuming bool) (Reply, error) {
	if resuming {
		return a.resume(ctx, sess, text)
	}

	plan, err := a.planner.Plan(ctx, sess.History, text, sess.ID)
	if err != nil {
		return Reply{}, err
	}
	sess.History = append(sess.History, turns.NewUserMessage(text))

	if plan.Direct() {
		sess.History = append(sess.History, turns.NewAssistantMessage(plan.DirectText))
		sess.Suspended = nil
		return Reply{Text: plan.DirectText}, nil
	}

	st := turns.NewState(sess.ID, a.Name, sess.History)
	st.Pending = plan.ToolCalls
	step, err := a.runner.RunNext(ctx, st)
	if err != nil {
		return Reply{}, err
	}
	return a.finish(ctx, sess, st, step)
}

func (a *Agent) resume(ctx context.Context, sess *turns.Session, text string) (Reply, error) {
	st := sess.Suspended
	if st == nil || !st.Resumable() {
		return Reply{}, ErrNotSuspended
	}

	sess.History = append(sess.History, turns.NewUserMessage(text))
	st.History = append([]turns.Message(nil), sess.History...)

	step, err := a.runner.Resume(ctx, st, text)
	if err != nil {
		return Reply{}, err
	}
	return a.finish(ctx, sess, st, step)
}

func (a *Agent) finish(ctx context.Context, sess *turns.Session, st *turns.State, step Step) (Reply, error) {
	if step.Suspended {
		st.Append(turns.NewAssistantMessage(step.Prompt))
		sess.History = st.History
		sess.Suspended = st
		log.Info().Str("session_id", sess.ID).Str("agent", a.Name).Msg("turn suspended")
		return Reply{Text: step.Prompt, Suspended: true}, nil
	}

	text, err := a.synth.Synthesize(ctx, st.History, st.Completed)
	if err != nil {
		return Reply{}, err
	}
	st.Append(turns.NewAssistantMessage(text))
	sess.History = st.History
	sess.Suspended = nil
	log.Info().Str("session_id", sess.ID).Str("agent", a.Name).Int("results", len(st.Completed)).Msg("turn completed")
	return Reply{Text: text}, nil
}
