package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pokerroom/engine"
)

func TestManager_BindAndLookup(t *testing.T) {
	m := NewManager()

	err := m.Bind("conn1", "alice", "room1")
	require.NoError(t, err)

	session, ok := m.SessionOf("conn1")
	require.True(t, ok)
	require.Equal(t, engine.SessionID("alice"), session)

	room, ok := m.RoomOf("conn1")
	require.True(t, ok)
	require.Equal(t, engine.RoomID("room1"), room)

	conn, ok := m.ConnOf("alice")
	require.True(t, ok)
	require.Equal(t, ConnID("conn1"), conn)

	require.ElementsMatch(t, []ConnID{"conn1"}, m.ConnsInRoom("room1"))
}

func TestManager_BindRejectsDuplicateSessionInSameRoom(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Bind("conn1", "alice", "room1"))

	err := m.Bind("conn2", "alice", "room1")
	require.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestManager_BindAllowsSameSessionInDifferentRooms(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Bind("conn1", "alice", "room1"))
	require.NoError(t, m.Bind("conn2", "alice", "room2"))

	room, ok := m.RoomOf("conn2")
	require.True(t, ok)
	require.Equal(t, engine.RoomID("room2"), room)
}

func TestManager_Rebind(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Bind("conn1", "alice", "room1"))

	err := m.Rebind("conn1", "conn2")
	require.NoError(t, err)

	_, ok := m.SessionOf("conn1")
	require.False(t, ok, "old connection should no longer resolve")

	session, ok := m.SessionOf("conn2")
	require.True(t, ok)
	require.Equal(t, engine.SessionID("alice"), session)

	conn, ok := m.ConnOf("alice")
	require.True(t, ok)
	require.Equal(t, ConnID("conn2"), conn)

	require.ElementsMatch(t, []ConnID{"conn2"}, m.ConnsInRoom("room1"))
}

func TestManager_RebindUnknownConnFails(t *testing.T) {
	m := NewManager()
	err := m.Rebind("ghost", "conn2")
	require.ErrorIs(t, err, ErrUnknownConn)
}

func TestManager_UnbindReportsRoomEmptiness(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Bind("conn1", "alice", "room1"))
	require.NoError(t, m.Bind("conn2", "bob", "room1"))

	session, room, roomEmpty, ok := m.Unbind("conn1")
	require.True(t, ok)
	require.Equal(t, engine.SessionID("alice"), session)
	require.Equal(t, engine.RoomID("room1"), room)
	require.False(t, roomEmpty, "bob is still in the room")

	_, _, roomEmpty, ok = m.Unbind("conn2")
	require.True(t, ok)
	require.True(t, roomEmpty, "room should now be empty")
}

func TestManager_UnbindUnknownConnReportsNotFound(t *testing.T) {
	m := NewManager()
	_, _, _, ok := m.Unbind("ghost")
	require.False(t, ok)
}

func TestManager_RebindPreservesRoomMembershipAcrossReconnect(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Bind("conn1", "alice", "room1"))
	require.NoError(t, m.Bind("conn2", "bob", "room1"))
	require.NoError(t, m.Rebind("conn1", "conn3"))

	require.ElementsMatch(t, []ConnID{"conn2", "conn3"}, m.ConnsInRoom("room1"))
}
