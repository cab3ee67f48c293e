package runtime

import (
	"context"
	"testing"

	"chathub/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	id string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Join_One_Channel_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	channelID := "general"
	sink := Sink{id: connID}

	// Given no connection is registered
	// And no room exists
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)

	// When a connection registers and joins a channel
	registry.Register(connID, sink)
	registry.Join(channelID, connID)

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sink, registry.Sessions[connID])

	req.Len(registry.RoomMembers, 1)
	req.Contains(registry.RoomMembers[channelID], connID)

	req.Len(registry.SinksForChannel(channelID), 1)
	req.Contains(registry.SinksForChannel(channelID), sink)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	channelID := "general"

	// Given a registered connection
	registry.Register(connID, Sink{id: connID})

	// When it joins the same channel twice
	registry.Join(channelID, connID)
	registry.Join(channelID, connID)

	// Then the subscription exists exactly once
	req.Len(registry.RoomMembers[channelID], 1)
	req.Len(registry.SinksForChannel(channelID), 1)
}

func TestRegistry_SinksForChannel_Excludes_Other_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	sink1 := Sink{id: connID1}
	sink2 := Sink{id: connID2}

	// Given two connections subscribed to different channels
	registry.Register(connID1, sink1)
	registry.Register(connID2, sink2)
	registry.Join("general", connID1)
	registry.Join("random", connID2)

	// When resolving the audience of one channel
	sinks := registry.SinksForChannel("general")

	// Then only its subscriber is included
	req.Len(sinks, 1)
	req.Contains(sinks, sink1)

	// And AllSinks still sees both connections
	req.Len(registry.AllSinks(), 2)
}

func TestRegistry_Leave_Removes_Empty_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	channelID := "general"

	// Given a connection subscribed to a channel
	registry.Register(connID, Sink{id: connID})
	registry.Join(channelID, connID)

	// When it leaves
	registry.Leave(channelID, connID)

	// Then the room doesn't exist anymore
	req.Empty(registry.RoomMembers)
	req.Nil(registry.SinksForChannel(channelID))

	// And leaving a room never joined is a no-op
	registry.Leave("random", connID)
	req.Empty(registry.RoomMembers)
}

func TestRegistry_DropConnection_Leaves_Every_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	sink2 := Sink{id: connID2}

	// Given a connection subscribed to several channels alongside another
	registry.Register(connID1, Sink{id: connID1})
	registry.Register(connID2, sink2)
	registry.Join("general", connID1)
	registry.Join("random", connID1)
	registry.Join("general", connID2)

	// When the first connection is dropped
	registry.DropConnection(connID1)

	// Then its sink and every subscription are gone
	req.Len(registry.Sessions, 1)
	req.Len(registry.RoomMembers, 1)
	req.Len(registry.SinksForChannel("general"), 1)
	req.Contains(registry.SinksForChannel("general"), sink2)
	req.Nil(registry.SinksForChannel("random"))
}
