// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. CreatedAt is assigned by
// the server at ingestion time, never by the client, so that each
// channel has a server-consistent total order.
type Message struct {
	ID        uuid.UUID // unique identifier
	ChannelID string
	SenderID  string
	Text      string
	CreatedAt time.Time
}
