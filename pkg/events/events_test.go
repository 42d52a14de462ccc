package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBuilders(t *testing.T) {
	e := NewEvent(EventTypeToolNeedsInput, "acct-1").
		WithAgent("receptionist_agent").
		WithTool("book_job_tool", "Client b@x.com not found").
		WithError(errors.New("x"))

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "acct-1", e.SessionID)
	assert.Equal(t, "book_job_tool", e.Tool)
	assert.Equal(t, "x", e.Error)
	assert.False(t, e.Time.IsZero())
}

func TestCollector(t *testing.T) {
	c := &Collector{}
	require.NoError(t, c.PublishEvent(context.Background(), NewEvent(EventTypeTurnStarted, "s")))
	require.NoError(t, c.PublishEvent(context.Background(), NewEvent(EventTypeTurnCompleted, "s")))
	assert.Equal(t, []EventType{EventTypeTurnStarted, EventTypeTurnCompleted}, c.Types())
	assert.NoError(t, NullSink{}.PublishEvent(context.Background(), Event{}))
}

func TestEventRouterDeliversToHandlers(t *testing.T) {
	router, err := NewEventRouter(WithLogger(NewWatermillLogger(zerolog.Nop())))
	require.NoError(t, err)

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{})
	router.AddHandler("collect", func(ctx context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
		if len(got) == 2 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	sink := router.Sink()
	require.NoError(t, sink.PublishEvent(ctx, NewEvent(EventTypeTurnStarted, "acct-1")))
	require.NoError(t, sink.PublishEvent(ctx, NewEvent(EventTypeTurnCompleted, "acct-1").WithMessage("hi")))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	require.NoError(t, router.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	types := []EventType{got[0].Type, got[1].Type}
	assert.ElementsMatch(t, []EventType{EventTypeTurnStarted, EventTypeTurnCompleted}, types)
}
