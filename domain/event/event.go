package event

import (
	"time"

	"chathub/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the fanout worker can deliver to sinks.
// Channel returns the room the event is scoped to, or "" for events
// addressed to every live connection.
type DomainEvent interface {
	Channel() string
}

// MessageStored is emitted once a message has been persisted. It is the
// only path by which live messages reach subscribers, and it is never
// emitted when persistence failed.
type MessageStored struct {
	ID         uuid.UUID
	ChannelID  string
	SenderID   string
	SenderName string
	Text       string
	At         time.Time
}

func (m MessageStored) Channel() string {
	return m.ChannelID
}

// PresenceChanged is emitted on every offline->online or
// online->offline transition, with the full roster as it existed at
// that instant. Scoped globally.
type PresenceChanged struct {
	UserID   string
	IsOnline bool
	Roster   []domain.RosterEntry
}

func (PresenceChanged) Channel() string {
	return ""
}
