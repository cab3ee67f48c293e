package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPresence_Register_First_Connection_Goes_Online(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.NewString()
	connID := uuid.NewString()

	// Given the user has no live connection
	req.False(presence.IsOnline(userID))

	// When their first connection registers
	wentOnline := presence.Register(connID, userID)

	// Then the transition is reported and the user is online
	req.True(wentOnline)
	req.True(presence.IsOnline(userID))
	req.Equal(1, presence.OnlineCount())
}

func TestPresence_Register_Second_Tab_Is_Silent(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.NewString()

	// Given the user is already online through a first tab
	presence.Register(uuid.NewString(), userID)

	// When a second tab registers
	wentOnline := presence.Register(uuid.NewString(), userID)

	// Then no transition is reported, the user stays a single online entry
	req.False(wentOnline)
	req.True(presence.IsOnline(userID))
	req.Equal(1, presence.OnlineCount())
}

func TestPresence_Deregister_Last_Connection_Goes_Offline(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.NewString()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()

	// Given a user online through two tabs
	presence.Register(connID1, userID)
	presence.Register(connID2, userID)

	// When the first tab closes
	wentOffline := presence.Deregister(connID1, userID)

	// Then nothing observable changes
	req.False(wentOffline)
	req.True(presence.IsOnline(userID))

	// When the last tab closes
	wentOffline = presence.Deregister(connID2, userID)

	// Then the user goes offline and their entry disappears
	req.True(wentOffline)
	req.False(presence.IsOnline(userID))
	req.Equal(0, presence.OnlineCount())
	req.Empty(presence.Snapshot())
}

func TestPresence_Deregister_Unknown_Connection_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	userID := uuid.NewString()

	// Given a user online through one tab
	presence.Register(uuid.NewString(), userID)

	// When a connection that was never registered deregisters
	wentOffline := presence.Deregister(uuid.NewString(), userID)

	// Then no transition and no state change
	req.False(wentOffline)
	req.True(presence.IsOnline(userID))

	// And deregistering for an unknown user is equally silent
	req.False(presence.Deregister(uuid.NewString(), uuid.NewString()))
}

func TestPresence_Snapshot_Only_Lists_Online_Users(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	alice := uuid.NewString()
	bob := uuid.NewString()
	aliceConn := uuid.NewString()

	// Given Alice and Bob online
	presence.Register(aliceConn, alice)
	presence.Register(uuid.NewString(), bob)

	// When Alice disconnects
	presence.Deregister(aliceConn, alice)

	// Then only Bob remains in the snapshot
	snapshot := presence.Snapshot()
	req.Len(snapshot, 1)
	req.True(snapshot[bob])
	req.NotContains(snapshot, alice)
}
