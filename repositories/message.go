package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(message StoredMessage) error
	ListPage(channelID string, page, pageSize int) ([]StoredMessage, int, bool, error)
	CountForChannel(channelID string) (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// StoredMessage is the repository-level shape of a message. The sender
// username is denormalized at ingestion time so history pages never
// need a per-message user lookup.
type StoredMessage struct {
	ID         uuid.UUID
	ChannelID  string
	SenderID   string
	SenderName string
	Text       string
	At         time.Time
}

type messageRecord struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	At         int64  `json:"at"`
}

// messageKey formats "msg:{channel_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func messageKey(m StoredMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.ChannelID, m.At.UnixNano(), m.ID))
}

func messagePrefix(channelID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", channelID))
}

// StoreMessage persists a message in BadgerDB.
func (m MessageRepository) StoreMessage(message StoredMessage) error {
	bytes, err := json.Marshal(fromStoredMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), bytes)
	})
}

// ListPage returns the page-th most recent block of a channel's
// history, oldest-to-newest within the block, plus the channel total
// and whether older messages remain. Page 1 is the newest block.
//
// Thanks to the padded timestamp in the key, a reverse prefix scan
// walks the channel newest-first; we skip (page-1)*pageSize entries,
// decode pageSize of them, keep counting to the end for the total, and
// finally reverse the taken slice to restore chronological order.
//
// A channel with no messages yields an empty, valid page.
func (m MessageRepository) ListPage(channelID string, page, pageSize int) ([]StoredMessage, int, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	skip := (page - 1) * pageSize

	var window [][]byte
	total := 0

	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(channelID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key of this channel, then walk backwards.
		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if total >= skip && total < skip+pageSize {
				err := it.Item().Value(func(value []byte) error {
					window = append(window, append([]byte{}, value...))
					return nil
				})
				if err != nil {
					return err
				}
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, false, err
	}

	messages := make([]StoredMessage, 0, len(window))
	for _, b := range window {
		var record messageRecord
		if err = json.Unmarshal(b, &record); err != nil {
			return nil, 0, false, err
		}
		message, err := toStoredMessage(record)
		if err != nil {
			return nil, 0, false, err
		}
		messages = append(messages, message)
	}

	// Newest-first on disk, chronological on the wire.
	messages = lo.Reverse(messages)
	hasMore := skip+len(messages) < total
	return messages, total, hasMore, nil
}

// CountForChannel returns the number of stored messages for a channel
// without touching values.
func (m MessageRepository) CountForChannel(channelID string) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(channelID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

const defaultPageSize = 20

func fromStoredMessage(message StoredMessage) messageRecord {
	return messageRecord{
		ID:         message.ID.String(),
		ChannelID:  message.ChannelID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Text:       message.Text,
		At:         message.At.UnixNano(),
	}
}

func toStoredMessage(record messageRecord) (StoredMessage, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return StoredMessage{}, err
	}
	return StoredMessage{
		ID:         parsedID,
		ChannelID:  record.ChannelID,
		SenderID:   record.SenderID,
		SenderName: record.SenderName,
		Text:       record.Text,
		At:         time.Unix(0, record.At).UTC(),
	}, nil
}
