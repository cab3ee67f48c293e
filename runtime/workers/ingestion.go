package workers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chathub/domain"
	"chathub/domain/event"
	"chathub/repositories"

	"github.com/google/uuid"
)

// IngestionWorker is the message ingestion pipeline: it validates an
// incoming sending intent, stamps the server-side CreatedAt, persists
// the message, and only then emits the stored event for fan-out.
//
// A single ingestion worker drains the command channel, so fan-out
// order always matches persistence order. When persistence fails the
// event is never emitted: subscribers cannot receive data that a
// history reload would not return.
type IngestionWorker struct {
	log      *slog.Logger
	commands chan domain.Command
	events   chan event.DomainEvent
	store    repositories.IMessageRepository
	clock    func() time.Time
}

func NewIngestionWorker(log *slog.Logger, commands chan domain.Command,
	events chan event.DomainEvent, store repositories.IMessageRepository,
	clock func() time.Time) *IngestionWorker {
	if clock == nil {
		clock = time.Now
	}
	return &IngestionWorker{log: log, commands: commands, events: events, store: store, clock: clock}
}

func (w *IngestionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping ingestion worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			post, ok := cmd.(domain.PostMessageCommand)
			if !ok {
				continue
			}
			if err := w.ingest(ctx, post); err != nil {
				// Storage failure: the send is abandoned, the session stays up.
				w.log.Error("Message persistence failed, dropping broadcast",
					"channel_id", post.ChannelID, "sender_id", post.SenderID, "error", err)
			}
		}
	}
}

func (w *IngestionWorker) ingest(ctx context.Context, cmd domain.PostMessageCommand) error {
	channelID := strings.TrimSpace(cmd.ChannelID)
	text := strings.TrimSpace(cmd.Text)
	if channelID == "" || text == "" {
		// Invalid sends are dropped silently; the session stays Active.
		w.log.Debug("Dropping invalid message", "channel_id", cmd.ChannelID, "sender_id", cmd.SenderID)
		return nil
	}

	stored := repositories.StoredMessage{
		ID:         uuid.New(),
		ChannelID:  channelID,
		SenderID:   cmd.SenderID,
		SenderName: cmd.SenderName,
		Text:       text,
		At:         w.clock().UTC(),
	}
	if err := w.store.StoreMessage(stored); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.events <- event.MessageStored{
		ID:         stored.ID,
		ChannelID:  stored.ChannelID,
		SenderID:   stored.SenderID,
		SenderName: stored.SenderName,
		Text:       stored.Text,
		At:         stored.At,
	}:
		return nil
	}
}
