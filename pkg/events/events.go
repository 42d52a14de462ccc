package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type EventType string

const (
	EventTypeTurnStarted    EventType = "turn.started"
	EventTypeTurnResumed    EventType = "turn.resumed"
	EventTypeTurnSuspended  EventType = "turn.suspended"
	EventTypeTurnCompleted  EventType = "turn.completed"
	EventTypeTurnFailed     EventType = "turn.failed"
	EventTypeToolCompleted  EventType = "tool.completed"
	EventTypeToolNeedsInput EventType = "tool.needs_input"
)

// Event is a turn lifecycle notification. Events are informational; nothing in the
// turn depends on them being delivered.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Agent     string    `json:"agent,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Time      time.Time `json:"time"`
}

func NewEvent(t EventType, sessionID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		Time:      time.Now().UTC(),
	}
}

func (e Event) WithAgent(agent string) Event {
	e.Agent = agent
	return e
}

func (e Event) WithTool(tool, message string) Event {
	e.Tool = tool
	e.Message = message
	return e
}

func (e Event) WithMessage(message string) Event {
	e.Message = message
	return e
}

func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

func NewEventFromJson(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, errors.Wrap(err, "failed to parse event")
	}
	return e, nil
}

// Sink receives events.
type Sink interface {
	PublishEvent(ctx context.Context, e Event) error
}

// NullSink drops every event.
type NullSink struct{}

func (NullSink) PublishEvent(ctx context.Context, e Event) error { return nil }

// Collector records events in memory.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *Collector) PublishEvent(ctx context.Context, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Types lists the types of the recorded events in order.
func (c *Collector) Types() []EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}
