// Package sink contains EventSink implementations: the per-connection
// delivery queue and process-wide observers.
package sink

import (
	"context"

	"chathub/domain/event"
)

// SessionSink is the buffered delivery queue of one live connection.
// The fanout worker feeds it; the connection's write pump drains it.
type SessionSink struct {
	Events chan event.DomainEvent
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by fanout. A full queue drops the event rather than
// stalling delivery to every other connection: a client lagging that
// far behind will resynchronize from history on reconnect.
func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
