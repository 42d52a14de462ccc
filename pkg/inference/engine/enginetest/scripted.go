// Package enginetest provides a scripted Engine for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// ErrScriptExhausted is returned when more completions are requested than were scripted.
var ErrScriptExhausted = errors.New("scripted engine: no more responses")

type step struct {
	completion *engine.Completion
	err        error
}

// Scripted replays queued completions in order and records every request it saw.
type Scripted struct {
	mu       sync.Mutex
	steps    []step
	requests []engine.Request
}

var _ engine.Engine = (*Scripted)(nil)

func New() *Scripted {
	return &Scripted{}
}

// Text queues a plain text completion.
func (s *Scripted) Text(text string) *Scripted {
	return s.push(step{completion: &engine.Completion{Text: text}})
}

// Call queues a completion proposing the given calls.
func (s *Scripted) Call(calls ...turns.ToolCall) *Scripted {
	return s.push(step{completion: &engine.Completion{ToolCalls: calls}})
}

// Fail queues an error.
func (s *Scripted) Fail(err error) *Scripted {
	return s.push(step{err: err})
}

func (s *Scripted) push(st step) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, st)
	return s
}

func (s *Scripted) Complete(ctx context.Context, req engine.Request) (*engine.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.err != nil {
		return nil, st.err
	}
	c := *st.completion
	return &c, nil
}

// Requests returns the requests received so far.
func (s *Scripted) Requests() []engine.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Remaining is the number of queued responses not yet consumed.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Call is a shorthand for turns.NewToolCall.
func Call(name string, args map[string]any) turns.ToolCall {
	return turns.NewToolCall(name, args)
}
