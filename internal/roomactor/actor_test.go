package roomactor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/wire"
)

// fakeBus records every broadcast the actor publishes, guarded by a mutex
// since broadcasts arrive from the actor's own goroutine while assertions
// run on the test goroutine.
type fakeBus struct {
	mu         sync.Mutex
	rooms      []engine.RoomSnapshot
	players    []engine.PlayerView
	gameEvents []wire.GameEvent
}

func (b *fakeBus) RoomState(_ engine.RoomID, snap engine.RoomSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, snap)
}

func (b *fakeBus) PlayerState(_ engine.RoomID, _ engine.SessionID, view engine.PlayerView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.players = append(b.players, view)
}

func (b *fakeBus) GameEvent(_ engine.RoomID, evt wire.GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gameEvents = append(b.gameEvents, evt)
}

func (b *fakeBus) eventKinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	kinds := make([]string, len(b.gameEvents))
	for i, e := range b.gameEvents {
		kinds[i] = e.Kind
	}
	return kinds
}

func (b *fakeBus) lastRoomState() engine.RoomSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rooms[len(b.rooms)-1]
}

// newTestActor seats two sessions with 1000-chip buy-ins at fast timer
// intervals so mock-clock advances are easy to reason about, and returns the
// actor along with its clock and broadcaster.
func newTestActor(t *testing.T) (*Actor, *quartz.Mock, *fakeBus) {
	t.Helper()

	cfg := engine.Config{
		MaxSeats:             9,
		SmallBlind:           10,
		BigBlind:             20,
		MinBuyInBBs:          1,
		ReapGraceMS:          60_000,
		AutoAdvanceMS:        1000,
		ShowdownDelayMS:      2000,
		RunItTwiceDeadlineMS: 5000,
	}
	host := engine.SessionID("p0")
	room, err := engine.NewRoom("room1", "test room", host, cfg, engine.NewDeterministicRand(1))
	require.NoError(t, err)

	mockClock := clock.NewMock(t)
	bus := &fakeBus{}
	a := New("room1", room, mockClock, bus)
	t.Cleanup(a.Stop)

	for seat, session := range []engine.SessionID{"p0", "p1"} {
		id, err := a.RequestSeat(session, seat, 1000)
		require.NoError(t, err)
		if session != host {
			require.NoError(t, a.ApproveSeat(host, id))
		}
	}
	require.NoError(t, a.StartGame())

	return a, mockClock, bus
}

func TestActor_StartGameDealsFirstHand(t *testing.T) {
	a, _, bus := newTestActor(t)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhasePreFlop, snap.Phase)
	require.Contains(t, bus.eventKinds(), wire.GameEventSeatApproved)
}

func TestActor_ShowdownAutoStartsNextHand(t *testing.T) {
	a, mockClock, _ := newTestActor(t)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	handNumber := snap.HandNumber

	// Heads-up: seat 0 is dealer/SB and acts first preflop.
	require.NoError(t, a.PlayerAction("p0", engine.ActionFold, 0))

	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhaseShowdown, snap.Phase)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(2000 * time.Millisecond).MustWait(ctx)

	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, handNumber+1, snap.HandNumber)
	require.Equal(t, engine.PhasePreFlop, snap.Phase)
}

func TestActor_AutoAdvancesAllInStreets(t *testing.T) {
	a, mockClock, _ := newTestActor(t)

	require.NoError(t, a.PlayerAction("p0", engine.ActionAllIn, 0))
	require.NoError(t, a.PlayerAction("p1", engine.ActionAllIn, 0))

	snap, err := a.Snapshot()
	require.NoError(t, err)
	if snap.RunItTwiceOffered {
		require.NoError(t, a.RunItTwiceVote("p0", false))
		require.NoError(t, a.RunItTwiceVote("p1", false))
	}

	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhaseFlop, snap.Phase)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mockClock.Advance(1000 * time.Millisecond).MustWait(ctx)
	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhaseTurn, snap.Phase)

	mockClock.Advance(1000 * time.Millisecond).MustWait(ctx)
	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhaseRiver, snap.Phase)

	mockClock.Advance(1000 * time.Millisecond).MustWait(ctx)
	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, engine.PhaseShowdown, snap.Phase)
}

func TestActor_RunItTwiceTimeoutDeclines(t *testing.T) {
	a, mockClock, bus := newTestActor(t)

	require.NoError(t, a.PlayerAction("p0", engine.ActionAllIn, 0))
	require.NoError(t, a.PlayerAction("p1", engine.ActionAllIn, 0))

	snap, err := a.Snapshot()
	require.NoError(t, err)
	if !snap.RunItTwiceOffered {
		t.Skip("run-it-twice not offered for this deterministic deal")
	}
	require.Contains(t, bus.eventKinds(), wire.GameEventRunItTwiceOffered)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(5000 * time.Millisecond).MustWait(ctx)

	snap, err = a.Snapshot()
	require.NoError(t, err)
	require.False(t, snap.RunItTwiceAccepted)
	require.Contains(t, bus.eventKinds(), wire.GameEventRunItTwiceResult)
}

func TestActor_SubmitAfterStopReturnsErrStopped(t *testing.T) {
	a, _, _ := newTestActor(t)
	a.Stop()

	_, err := a.Snapshot()
	require.ErrorIs(t, err, ErrStopped)
}

func TestActor_PlayerActionFromWrongSeatRejected(t *testing.T) {
	a, _, _ := newTestActor(t)

	// p1 is seated but it is p0's turn preflop heads-up.
	err := a.PlayerAction("p1", engine.ActionCheck, 0)
	require.Error(t, err)
}

func TestActor_LastBroadcastReflectsHandNumber(t *testing.T) {
	a, _, bus := newTestActor(t)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, bus.lastRoomState().HandNumber, snap.HandNumber)
}
