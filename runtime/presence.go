// Package runtime handles session bookkeeping, event propagation, and
// fan-out. It orchestrates the system without containing business logic
// or domain rules.
package runtime

import "sync"

type Set map[string]struct{}

// Presence maps a user to the set of their live connection IDs. A user
// is online iff the set is non-empty, so two tabs count as one online
// user and closing one of them changes nothing observable.
//
// Presence is safe for concurrent use; every operation holds the lock
// for its whole duration, so no reader can observe a set mid-mutation.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]Set // userID -> connection IDs
}

func NewPresence() *Presence {
	return &Presence{entries: make(map[string]Set)}
}

// Register adds a connection to a user's entry, creating the entry if
// absent. Reports whether this took the user from offline to online.
func (p *Presence) Register(connID, userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.entries[userID]
	if !ok {
		conns = make(Set)
		p.entries[userID] = conns
	}
	wasOffline := len(conns) == 0
	conns[connID] = struct{}{}
	return wasOffline
}

// Deregister removes a connection from a user's entry and reports
// whether the user just went offline. Deregistering a connection that
// was never registered is a no-op.
func (p *Presence) Deregister(connID, userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.entries[userID]
	if !ok {
		return false
	}
	if _, ok := conns[connID]; !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		// An empty entry and a never-seen user are observably the same.
		delete(p.entries, userID)
		return true
	}
	return false
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries[userID]) > 0
}

// Snapshot returns the online flag for every user with at least one
// connection. The map is a copy and always reflects a state that
// existed at some instant.
func (p *Presence) Snapshot() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	online := make(map[string]bool, len(p.entries))
	for userID, conns := range p.entries {
		if len(conns) > 0 {
			online[userID] = true
		}
	}
	return online
}

// OnlineCount reports how many users are currently online.
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
