// Package projection builds read views from the live state and the
// stores. It does not emit events or mutate anything.
package projection

import (
	"chathub/contract"
	"chathub/domain"
	"chathub/repositories"

	"github.com/samber/lo"
)

// Roster joins the full user directory against the presence tracker to
// produce the online/offline view every client sees. Recomputed on each
// presence transition; acceptable while the directory stays small.
type Roster struct {
	users    repositories.IUserRepository
	presence contract.IPresence
}

func NewRoster(users repositories.IUserRepository, presence contract.IPresence) *Roster {
	return &Roster{users: users, presence: presence}
}

// Build returns one entry per known user with their current online flag.
func (r *Roster) Build() ([]domain.RosterEntry, error) {
	users, err := r.users.ListUsers()
	if err != nil {
		return nil, err
	}
	online := r.presence.Snapshot()

	return lo.Map(users, func(user domain.User, _ int) domain.RosterEntry {
		return domain.RosterEntry{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsOnline: online[user.ID],
		}
	}), nil
}
