package domain

import "time"

// Channel is an administrative record. The realtime core treats the
// channel ID as an opaque room key; nothing here is required for a
// connection to subscribe to the matching room.
type Channel struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Member records administrative channel membership. Decoupled from
// room subscriptions, which are transient and process-local.
type Member struct {
	ChannelID string
	UserID    string
	JoinedAt  time.Time
}
