package repositories

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"chathub/domain"
	"chathub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type userRecord struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	Roles        []string `json:"roles"`
	CreatedAt    int64    `json:"created_at"`
}

func userKey(email string) []byte {
	return []byte("user:" + email)
}

// CreateUser persists a new account keyed by email. The email must not
// already be taken; the check and the write happen in one transaction.
func (u UserRepository) CreateUser(username, email, hashedPassword string) (domain.User, error) {
	record := userRecord{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// GetUserByEmail retrieves one account, or ErrUserNotFound.
func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var record userRecord

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// ListUsers returns the whole user directory, username-sorted. The
// roster is recomputed from this on every presence transition, which is
// fine at the directory sizes this system targets.
func (u UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User

	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record userRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				users = append(users, toUser(record))
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

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func toUser(record userRecord) domain.User {
	return domain.User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Roles:        record.Roles,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}
}
