package sink

import (
	"context"
	"log/slog"

	"chathub/domain/event"
)

// EventLog is a permanent sink that traces every domain event.
type EventLog struct {
	log *slog.Logger
}

func NewEventLog(log *slog.Logger) *EventLog {
	return &EventLog{log: log}
}

func (e *EventLog) Consume(_ context.Context, evt event.DomainEvent) error {
	switch v := evt.(type) {
	case event.MessageStored:
		e.log.Debug("Message stored", "message_id", v.ID, "channel_id", v.ChannelID, "sender_id", v.SenderID)
	case event.PresenceChanged:
		e.log.Debug("Presence changed", "user_id", v.UserID, "is_online", v.IsOnline)
	default:
		e.log.Debug("Unknown event observed")
	}
	return nil
}
