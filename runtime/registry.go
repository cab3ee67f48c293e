package runtime

import (
	"sync"

	"chathub/contract"
)

// Registry tracks live connections and their room subscriptions.
// Sessions maps a connection ID to its delivery sink; RoomMembers maps
// a channel ID to the connections currently subscribed. Both are
// process-local and transient; administrative channel membership lives
// in the channel repository and is not consulted here.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // connID -> sink
	RoomMembers map[string]Set                // channelID -> connIDs
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		RoomMembers: make(map[string]Set),
	}
}

// Register records a connection's delivery sink. Must happen before any
// Join for that connection can produce deliveries.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[connID] = sink
}

// Join subscribes a connection to a room, creating the room on the fly.
// Idempotent: joining twice has the same effect as once.
func (r *Registry) Join(channelID, connID string) {
	if channelID == "" || connID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.RoomMembers[channelID]; !ok {
		r.RoomMembers[channelID] = make(Set)
	}
	r.RoomMembers[channelID][connID] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room never joined
// is a no-op. Empty rooms are removed so the map does not grow forever.
func (r *Registry) Leave(channelID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(channelID, connID)
}

func (r *Registry) leaveLocked(channelID, connID string) {
	members, ok := r.RoomMembers[channelID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.RoomMembers, channelID)
	}
}

// DropConnection forgets a connection entirely: its sink and every room
// subscription. Called on disconnect, before the handle is discarded,
// so no room retains a dangling reference.
func (r *Registry) DropConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, connID)
	for channelID := range r.RoomMembers {
		r.leaveLocked(channelID, connID)
	}
}

// SinksForChannel resolves the room's current subscribers into their
// delivery sinks. Connections subscribed to other rooms only are never
// included. Returns nil for an unknown or empty room.
func (r *Registry) SinksForChannel(channelID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[channelID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.Sessions[connID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// AllSinks returns every live connection's sink, for events addressed
// to everyone (presence updates).
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.Sessions))
	for _, sink := range r.Sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// SessionCount reports the number of live connections.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Sessions)
}

// RoomCount reports the number of rooms with at least one subscriber.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.RoomMembers)
}
