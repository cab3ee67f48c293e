package repositories

import (
	"encoding/json"
	"sort"
	"time"

	"chathub/domain"
	"chathub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IChannelRepository interface {
	CreateChannel(name, createdBy string) (domain.Channel, error)
	GetChannel(id string) (domain.Channel, error)
	ListChannels() ([]domain.Channel, error)
	RenameChannel(id, name string) (domain.Channel, error)
	DeleteChannel(id string) error
	AddMember(channelID, userID string) (bool, error)
	RemoveMember(channelID, userID string) error
	ListMembers(channelID string) ([]domain.Member, error)
}

type ChannelRepository struct {
	db *badger.DB
}

func NewChannelRepository(db *badger.DB) IChannelRepository {
	return &ChannelRepository{db: db}
}

type channelRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

type memberRecord struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	JoinedAt  int64  `json:"joined_at"`
}

// Key layout: "channel:{id}" holds the record, "channel_name:{name}"
// is a uniqueness index pointing back at the id, "member:{id}:{user}"
// holds one administrative membership.
func channelKey(id string) []byte      { return []byte("channel:" + id) }
func channelNameKey(name string) []byte { return []byte("channel_name:" + name) }
func memberKey(channelID, userID string) []byte {
	return []byte("member:" + channelID + ":" + userID)
}
func memberPrefix(channelID string) []byte { return []byte("member:" + channelID + ":") }

// CreateChannel creates a uniquely named channel and auto-joins its creator.
func (c ChannelRepository) CreateChannel(name, createdBy string) (domain.Channel, error) {
	record := channelRecord{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Channel{}, err
	}
	member := memberRecord{ChannelID: record.ID, UserID: createdBy, JoinedAt: record.CreatedAt}
	memberData, err := json.Marshal(member)
	if err != nil {
		return domain.Channel{}, err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(channelNameKey(name)); err == nil {
			return errors.ErrChannelExists
		}
		if err := txn.Set(channelKey(record.ID), data); err != nil {
			return err
		}
		if err := txn.Set(channelNameKey(name), []byte(record.ID)); err != nil {
			return err
		}
		return txn.Set(memberKey(record.ID, createdBy), memberData)
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(record), nil
}

func (c ChannelRepository) GetChannel(id string) (domain.Channel, error) {
	var record channelRecord
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(channelKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Channel{}, errors.ErrChannelNotFound
	}
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(record), nil
}

// ListChannels returns every channel, newest first.
func (c ChannelRepository) ListChannels() ([]domain.Channel, error) {
	var channels []domain.Channel
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte("channel:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record channelRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				channels = append(channels, toChannel(record))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.After(channels[j].CreatedAt)
	})
	return channels, nil
}

// RenameChannel updates the channel name, keeping the uniqueness index
// in sync. Renaming to a name owned by another channel fails with
// ErrChannelExists.
func (c ChannelRepository) RenameChannel(id, name string) (domain.Channel, error) {
	var record channelRecord
	err := c.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(channelNameKey(name)); err == nil {
			var ownerID string
			if err := item.Value(func(val []byte) error {
				ownerID = string(val)
				return nil
			}); err != nil {
				return err
			}
			if ownerID != id {
				return errors.ErrChannelExists
			}
		}

		item, err := txn.Get(channelKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrChannelNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		if err := txn.Delete(channelNameKey(record.Name)); err != nil {
			return err
		}
		record.Name = name
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := txn.Set(channelKey(id), data); err != nil {
			return err
		}
		return txn.Set(channelNameKey(name), []byte(id))
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(record), nil
}

// DeleteChannel removes the channel, its name index, its administrative
// members, and its stored messages. Live room subscriptions are
// untouched: rooms are transient and simply go quiet.
func (c ChannelRepository) DeleteChannel(id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(channelKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrChannelNotFound
		}
		if err != nil {
			return err
		}
		var record channelRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		if err := txn.Delete(channelKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(channelNameKey(record.Name)); err != nil {
			return err
		}
		if err := deletePrefix(txn, memberPrefix(id)); err != nil {
			return err
		}
		return deletePrefix(txn, messagePrefix(id))
	})
}

// AddMember records administrative membership. Returns false when the
// user already was a member.
func (c ChannelRepository) AddMember(channelID, userID string) (bool, error) {
	added := false
	err := c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(channelKey(channelID)); err == badger.ErrKeyNotFound {
			return errors.ErrChannelNotFound
		} else if err != nil {
			return err
		}
		if _, err := txn.Get(memberKey(channelID, userID)); err == nil {
			return nil
		}
		record := memberRecord{ChannelID: channelID, UserID: userID, JoinedAt: time.Now().Unix()}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		added = true
		return txn.Set(memberKey(channelID, userID), data)
	})
	return added, err
}

// RemoveMember is a no-op when the membership does not exist.
func (c ChannelRepository) RemoveMember(channelID, userID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(channelID, userID))
	})
}

func (c ChannelRepository) ListMembers(channelID string) ([]domain.Member, error) {
	var members []domain.Member
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := memberPrefix(channelID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record memberRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				members = append(members, domain.Member{
					ChannelID: record.ChannelID,
					UserID:    record.UserID,
					JoinedAt:  time.Unix(record.JoinedAt, 0).UTC(),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return members, err
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func toChannel(record channelRecord) domain.Channel {
	return domain.Channel{
		ID:        record.ID,
		Name:      record.Name,
		CreatedBy: record.CreatedBy,
		CreatedAt: time.Unix(record.CreatedAt, 0).UTC(),
	}
}
