package gateway

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/registry"
	"pokerroom/internal/session"
	"pokerroom/internal/wire"
)

// testHarness wires a Gateway against a real registry/session.Manager (using
// the production clock, since nothing here waits on a timer) but stubs out
// the connection's websocket: dispatch, ack and Push touch c.ws only when
// they close the connection (a full send buffer or an invariant violation),
// which none of these tests trigger.
type testHarness struct {
	gw   *Gateway
	conn *connection
}

// lazyBus breaks the gateway/registry construction cycle exactly the way
// cmd/server/main.go does: the registry needs a Broadcaster before the
// gateway (which needs the registry) exists.
type lazyBus struct {
	gw *Gateway
}

func (b *lazyBus) RoomState(room engine.RoomID, snapshot engine.RoomSnapshot) {
	b.gw.RoomState(room, snapshot)
}

func (b *lazyBus) PlayerState(room engine.RoomID, session engine.SessionID, view engine.PlayerView) {
	b.gw.PlayerState(room, session, view)
}

func (b *lazyBus) GameEvent(room engine.RoomID, evt wire.GameEvent) {
	b.gw.GameEvent(room, evt)
}

func newTestHarness(t *testing.T, privilegedSecret string) *testHarness {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{})
	bus := &lazyBus{}
	reg := registry.New(clock.New(), bus, engine.DefaultConfig())
	sessions := session.NewManager()
	gw := New(reg, sessions, logger, privilegedSecret)
	bus.gw = gw

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	conn := &connection{
		id:     "conn1",
		send:   make(chan wire.Envelope, 16),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		gw:     gw,
	}
	gw.mu.Lock()
	gw.conns[conn.id] = conn
	gw.mu.Unlock()

	return &testHarness{gw: gw, conn: conn}
}

func (h *testHarness) dispatch(t *testing.T, cmdType string, data any) wire.Ack {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	h.gw.dispatch(h.conn, wire.ClientCommand{Type: cmdType, ID: "req1", Data: raw})
	return h.nextAck(t)
}

// nextAck drains the connection's outbound queue, skipping any room-state/
// player-state/game-event broadcasts the mutation produced along the way,
// and returns the "ack" envelope dispatch always pushes last.
func (h *testHarness) nextAck(t *testing.T) wire.Ack {
	t.Helper()
	for i := 0; i < 32; i++ {
		select {
		case env := <-h.conn.send:
			if env.Type != "ack" {
				continue
			}
			var ack wire.Ack
			require.NoError(t, json.Unmarshal(env.Payload, &ack))
			return ack
		default:
			t.Fatalf("no ack envelope pushed to connection")
		}
	}
	t.Fatalf("exhausted envelope queue without finding an ack")
	return wire.Ack{}
}

func TestGateway_JoinRoomCreatesRoomAndBindsSession(t *testing.T) {
	h := newTestHarness(t, "")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success, "ack error: %s", ack.Error)

	room, ok := h.gw.sessions.RoomOf(h.conn.id)
	require.True(t, ok)
	require.Equal(t, engine.RoomID("room1"), room)

	_, found := h.gw.registry.Get("room1")
	require.True(t, found)
}

func TestGateway_CommandOutsideRoomIsRejected(t *testing.T) {
	h := newTestHarness(t, "")

	ack := h.dispatch(t, wire.CmdStartGame, struct{}{})
	require.False(t, ack.Success)
	require.Equal(t, engine.ErrNotInRoom.Error(), ack.Error)
}

func TestGateway_RequestSeatRoutesToRoomActor(t *testing.T) {
	h := newTestHarness(t, "")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdRequestSeat, wire.RequestSeatData{SeatIndex: 0, BuyIn: 1000})
	require.True(t, ack.Success, "ack error: %s", ack.Error)

	actor, ok := h.gw.registry.Get("room1")
	require.True(t, ok)
	snap, err := actor.Snapshot()
	require.NoError(t, err)
	require.True(t, snap.Seats[0].Occupied, "alice is host, her seat request should auto-approve")
}

func TestGateway_PrivilegedCommandRejectsWrongSecret(t *testing.T) {
	h := newTestHarness(t, "correct-secret")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdPrivilegedEnable, wire.PrivilegedEnableData{Secret: "wrong"})
	require.False(t, ack.Success)
	require.Equal(t, engine.ErrWrongSecret.Error(), ack.Error)
}

func TestGateway_PrivilegedCommandAcceptsCorrectSecret(t *testing.T) {
	h := newTestHarness(t, "correct-secret")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdPrivilegedEnable, wire.PrivilegedEnableData{Secret: "correct-secret"})
	require.True(t, ack.Success, "ack error: %s", ack.Error)
}

func TestGateway_PrivilegedDisableRejectsWrongSecret(t *testing.T) {
	h := newTestHarness(t, "correct-secret")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdPrivilegedEnable, wire.PrivilegedEnableData{Secret: "correct-secret"})
	require.True(t, ack.Success, "ack error: %s", ack.Error)

	ack = h.dispatch(t, wire.CmdPrivilegedDisable, wire.PrivilegedDisableData{Secret: "wrong"})
	require.False(t, ack.Success)
	require.Equal(t, engine.ErrWrongSecret.Error(), ack.Error)
}

func TestGateway_PrivilegedDisableAcceptsCorrectSecret(t *testing.T) {
	h := newTestHarness(t, "correct-secret")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdPrivilegedEnable, wire.PrivilegedEnableData{Secret: "correct-secret"})
	require.True(t, ack.Success, "ack error: %s", ack.Error)

	ack = h.dispatch(t, wire.CmdPrivilegedDisable, wire.PrivilegedDisableData{Secret: "correct-secret"})
	require.True(t, ack.Success, "ack error: %s", ack.Error)
}

func TestGateway_ReconnectRebindsSessionAndSendsCatchUp(t *testing.T) {
	h := newTestHarness(t, "")

	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, wire.CmdRequestSeat, wire.RequestSeatData{SeatIndex: 0, BuyIn: 1000})
	require.True(t, ack.Success, "ack error: %s", ack.Error)

	oldConnID := h.conn.id
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	newConn := &connection{
		id:     "conn2",
		send:   make(chan wire.Envelope, 16),
		logger: h.gw.logger,
		ctx:    ctx,
		cancel: cancel,
		gw:     h.gw,
	}
	h.gw.mu.Lock()
	h.gw.conns[newConn.id] = newConn
	h.gw.mu.Unlock()

	raw, err := json.Marshal(wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice", PrevConnID: string(oldConnID),
	})
	require.NoError(t, err)
	h.gw.dispatch(newConn, wire.ClientCommand{Type: wire.CmdJoinRoom, ID: "req2", Data: raw})

	room, ok := h.gw.sessions.RoomOf(newConn.id)
	require.True(t, ok)
	require.Equal(t, engine.RoomID("room1"), room)
	_, stillBound := h.gw.sessions.RoomOf(oldConnID)
	require.False(t, stillBound, "old connection should no longer resolve after rebind")

	var sawCatchUp bool
drain:
	for i := 0; i < 32; i++ {
		select {
		case env := <-newConn.send:
			if env.Type == wire.EventCatchUp {
				var data wire.CatchUpData
				require.NoError(t, json.Unmarshal(env.Payload, &data))
				require.NotEmpty(t, data.Events, "expected the seat-approved event to be replayed")
				sawCatchUp = true
			}
		default:
			break drain
		}
	}
	require.True(t, sawCatchUp, "expected a catch-up envelope on the reconnecting connection")
}

func TestGateway_UnknownCommandIsRejected(t *testing.T) {
	h := newTestHarness(t, "")
	ack := h.dispatch(t, wire.CmdJoinRoom, wire.JoinRoomData{
		RoomID: "room1", Username: "alice", SessionID: "alice",
	})
	require.True(t, ack.Success)

	ack = h.dispatch(t, "not-a-real-command", struct{}{})
	require.False(t, ack.Success)
}
