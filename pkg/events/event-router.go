package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// DefaultTopic carries turn lifecycle events.
const DefaultTopic = "receptionist.events"

// EventRouter wires an in-process pub/sub to a watermill router so handlers can
// consume turn events independently of the request path.
type EventRouter struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
	topic      string
}

type EventRouterOption func(*EventRouter)

func WithLogger(logger watermill.LoggerAdapter) EventRouterOption {
	return func(r *EventRouter) { r.logger = logger }
}

func WithTopic(topic string) EventRouterOption {
	return func(r *EventRouter) { r.topic = topic }
}

func NewEventRouter(options ...EventRouterOption) (*EventRouter, error) {
	ret := &EventRouter{
		logger: watermill.NopLogger{},
		topic:  DefaultTopic,
	}
	for _, o := range options {
		o(ret)
	}

	goPubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}
	ret.router = router
	return ret, nil
}

// Sink publishes onto the router's topic.
func (e *EventRouter) Sink() *WatermillSink {
	return NewWatermillSink(e.Publisher, e.topic)
}

// AddHandler registers f for every event on the router's topic.
func (e *EventRouter) AddHandler(name string, f func(ctx context.Context, ev Event) error) {
	e.router.AddNoPublisherHandler(name, e.topic, e.Subscriber, func(msg *message.Message) error {
		ev, err := NewEventFromJson(msg.Payload)
		if err != nil {
			log.Error().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed event")
			return nil
		}
		return f(msg.Context(), ev)
	})
}

// Run blocks until ctx is cancelled or the router is closed.
func (e *EventRouter) Run(ctx context.Context) error {
	return e.router.Run(ctx)
}

// Running is closed once the router has started.
func (e *EventRouter) Running() chan struct{} {
	return e.router.Running()
}

func (e *EventRouter) Close() error {
	if err := e.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close pubsub")
	}
	if err := e.router.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close router")
	}
	return nil
}

// LogEvent is a handler that writes every event to the global logger.
func LogEvent(ctx context.Context, ev Event) error {
	l := log.Info()
	if ev.Type == EventTypeTurnFailed {
		l = log.Warn()
	}
	l.Str("event_type", string(ev.Type)).
		Str("session_id", ev.SessionID).
		Str("agent", ev.Agent).
		Str("tool", ev.Tool).
		Str("error", ev.Error).
		Msg(ev.Message)
	return nil
}
