package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// WatermillSink publishes events as JSON to a watermill Publisher.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

var _ Sink = (*WatermillSink)(nil)

func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

func (w *WatermillSink) PublishEvent(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event to JSON")
		return err
	}

	msg := message.NewMessage(e.ID, payload)
	msg.SetContext(ctx)
	if err := w.publisher.Publish(w.topic, msg); err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish event to watermill")
		return err
	}

	log.Trace().Str("topic", w.topic).Str("event_type", string(e.Type)).Msg("Published event to watermill")
	return nil
}
