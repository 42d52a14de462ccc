// Package supervisor dispatches incoming messages to agents, one turn at a time per
// session, and persists the session between turns.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/events"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

var (
	// ErrSessionSuspended is returned for a new turn while the session waits for an answer.
	ErrSessionSuspended = errors.New("session is waiting for an answer to a previous question")
	ErrUnknownAgent     = errors.New("unknown agent")
)

type Supervisor struct {
	sessions store.SessionStore
	router   *Router
	agents   map[string]*agent.Agent
	sink     events.Sink
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from the map once no turn holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Supervisor)

func WithEventSink(sink events.Sink) Option {
	return func(s *Supervisor) {
		if sink != nil {
			s.sink = sink
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Supervisor) { s.now = now }
}

func New(sessions store.SessionStore, router *Router, agents []*agent.Agent, options ...Option) *Supervisor {
	s := &Supervisor{
		sessions: sessions,
		router:   router,
		agents:   make(map[string]*agent.Agent, len(agents)),
		sink:     events.NullSink{},
		now:      time.Now,
		locks:    map[string]*sessionLock{},
	}
	for _, a := range agents {
		s.agents[a.Name] = a
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// ProcessTurn runs one message for sessionID. With resuming set, text answers the
// question the suspended turn asked.
func (s *Supervisor) ProcessTurn(ctx context.Context, text string, sessionID string, resuming bool) (agent.Reply, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	stored, err := s.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return agent.Reply{}, errors.Wrapf(err, "load session %s", sessionID)
	}
	return s.run(ctx, stored, text, resuming)
}

// Handle runs text as an answer if the session is suspended and as a new turn otherwise.
func (s *Supervisor) Handle(ctx context.Context, sessionID string, text string) (agent.Reply, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	stored, err := s.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return agent.Reply{}, errors.Wrapf(err, "load session %s", sessionID)
	}
	return s.run(ctx, stored, text, stored.IsSuspended())
}

// Reset discards a suspended turn. The history is kept.
func (s *Supervisor) Reset(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return errors.Wrapf(err, "load session %s", sessionID)
	}
	if sess.Suspended == nil {
		return nil
	}
	log.Info().Str("session_id", sessionID).Str("agent", sess.Suspended.Agent).Msg("discarding suspended turn")
	sess.Suspended = nil
	sess.UpdatedAt = s.now()
	return errors.Wrap(s.sessions.SaveSession(ctx, sess), "save session")
}

// Forget deletes the session with its history.
func (s *Supervisor) Forget(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()
	return errors.Wrap(s.sessions.DeleteSession(ctx, sessionID), "delete session")
}

func (s *Supervisor) run(ctx context.Context, stored *turns.Session, text string, resuming bool) (agent.Reply, error) {
	if resuming && !stored.IsSuspended() {
		return agent.Reply{}, agent.ErrNotSuspended
	}
	if !resuming && stored.IsSuspended() {
		return agent.Reply{}, ErrSessionSuspended
	}

	sess := stored.Clone()
	var name string
	if resuming {
		name = sess.Suspended.Agent
		s.publish(ctx, events.NewEvent(events.EventTypeTurnResumed, sess.ID).WithAgent(name).WithMessage(text))
	} else {
		var err error
		name, err = s.router.Route(ctx, sess.History, text)
		if err != nil {
			s.publish(ctx, events.NewEvent(events.EventTypeTurnFailed, sess.ID).WithError(err))
			return agent.Reply{}, err
		}
		s.publish(ctx, events.NewEvent(events.EventTypeTurnStarted, sess.ID).WithAgent(name).WithMessage(text))
	}

	a, ok := s.agents[name]
	if !ok {
		err := errors.Wrapf(ErrUnknownAgent, "%s", name)
		s.publish(ctx, events.NewEvent(events.EventTypeTurnFailed, sess.ID).WithAgent(name).WithError(err))
		return agent.Reply{}, err
	}

	reply, err := a.ProcessTurn(ctx, sess, text, resuming)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Str("agent", name).Msg("turn failed")
		s.publish(ctx, events.NewEvent(events.EventTypeTurnFailed, sess.ID).WithAgent(name).WithError(err))
		return agent.Reply{}, err
	}

	sess.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		s.publish(ctx, events.NewEvent(events.EventTypeTurnFailed, sess.ID).WithAgent(name).WithError(err))
		return agent.Reply{}, errors.Wrapf(err, "save session %s", sess.ID)
	}

	t := events.EventTypeTurnCompleted
	if reply.Suspended {
		t = events.EventTypeTurnSuspended
	}
	s.publish(ctx, events.NewEvent(t, sess.ID).WithAgent(name).WithMessage(reply.Text))
	return reply, nil
}

func (s *Supervisor) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

func (s *Supervisor) publish(ctx context.Context, e events.Event) {
	if err := s.sink.PublishEvent(ctx, e); err != nil {
		log.Warn().Err(err).Str("event_type", string(e.Type)).Msg("failed to publish turn event")
	}
}
