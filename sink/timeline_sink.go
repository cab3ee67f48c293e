package sink

import (
	"context"
	"sync"

	"chathub/domain"
	"chathub/domain/event"
)

// Timeline accumulates stored messages into a local chronological view.
type Timeline struct {
	mu       sync.Mutex
	Messages []domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	if evt, ok := e.(event.MessageStored); ok {
		t.mu.Lock()
		t.Messages = append(t.Messages, fromEvent(evt))
		t.mu.Unlock()
	}
	return nil
}

func (t *Timeline) All() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.Messages))
	copy(out, t.Messages)
	return out
}

func fromEvent(evt event.MessageStored) domain.Message {
	return domain.Message{
		ID:        evt.ID,
		ChannelID: evt.ChannelID,
		SenderID:  evt.SenderID,
		Text:      evt.Text,
		CreatedAt: evt.At,
	}
}
