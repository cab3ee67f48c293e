package sink

import (
	"context"
	"testing"

	"chathub/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionSink_Queues_Until_Full_Then_Drops(t *testing.T) {
	req := require.New(t)
	sessionSink := NewSessionSink(2)
	ctx := context.Background()

	// Given a queue with room for two events
	req.NoError(sessionSink.Consume(ctx, event.MessageStored{Text: "one"}))
	req.NoError(sessionSink.Consume(ctx, event.MessageStored{Text: "two"}))

	// When a third event arrives before the write pump drained anything
	req.NoError(sessionSink.Consume(ctx, event.MessageStored{Text: "three"}))

	// Then the overflow was dropped, the queued events kept their order
	req.Len(sessionSink.Events, 2)
	first := (<-sessionSink.Events).(event.MessageStored)
	second := (<-sessionSink.Events).(event.MessageStored)
	req.Equal("one", first.Text)
	req.Equal("two", second.Text)
}

func TestTimeline_Accumulates_Stored_Messages_Only(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	ctx := context.Background()
	id := uuid.New()

	// When a message event and a presence event are consumed
	req.NoError(timeline.Consume(ctx, event.MessageStored{ID: id, ChannelID: "general", Text: "hello"}))
	req.NoError(timeline.Consume(ctx, event.PresenceChanged{UserID: "u1", IsOnline: true}))

	// Then only the message lands in the view
	messages := timeline.All()
	req.Len(messages, 1)
	req.Equal(id, messages[0].ID)
	req.Equal("hello", messages[0].Text)
}
