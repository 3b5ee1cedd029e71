package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/wire"
)

type nopBus struct{}

func (nopBus) RoomState(engine.RoomID, engine.RoomSnapshot)          {}
func (nopBus) PlayerState(engine.RoomID, engine.SessionID, engine.PlayerView) {}
func (nopBus) GameEvent(engine.RoomID, wire.GameEvent)               {}

func testConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.ReapGraceMS = 1000
	return cfg
}

func TestRegistry_GetOrCreateReturnsSameActor(t *testing.T) {
	reg := New(clock.New(), nopBus{}, testConfig())

	a1 := reg.GetOrCreate("room1", "room one", "host")
	a2 := reg.GetOrCreate("room1", "room one", "host")
	require.Same(t, a1, a2)

	_, ok := reg.Get("room1")
	require.True(t, ok)
}

func TestRegistry_GetMissingRoomReportsNotFound(t *testing.T) {
	reg := New(clock.New(), nopBus{}, testConfig())
	_, ok := reg.Get("nope")
	require.False(t, ok)
}

func TestRegistry_NotifyEmptyReapsAfterGrace(t *testing.T) {
	mockClock := clock.NewMock(t)
	reg := New(mockClock, nopBus{}, testConfig())
	reg.GetOrCreate("room1", "room one", "host")

	reg.NotifyEmpty("room1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(1000 * time.Millisecond).MustWait(ctx)

	_, ok := reg.Get("room1")
	require.False(t, ok, "room should have been reaped")
}

func TestRegistry_RoomOccupiedCancelsPendingReap(t *testing.T) {
	mockClock := clock.NewMock(t)
	reg := New(mockClock, nopBus{}, testConfig())
	reg.GetOrCreate("room1", "room one", "host")

	reg.NotifyEmpty("room1")
	reg.RoomOccupied("room1")

	mockClock.Advance(1000 * time.Millisecond)

	_, ok := reg.Get("room1")
	require.True(t, ok, "room should survive since occupancy was reaffirmed before the grace period elapsed")
}

func TestRegistry_GetOrCreateCancelsPendingReapOnRejoin(t *testing.T) {
	mockClock := clock.NewMock(t)
	reg := New(mockClock, nopBus{}, testConfig())
	reg.GetOrCreate("room1", "room one", "host")

	reg.NotifyEmpty("room1")
	reg.GetOrCreate("room1", "room one", "host") // rejoin before the grace window elapses

	mockClock.Advance(1000 * time.Millisecond)

	_, ok := reg.Get("room1")
	require.True(t, ok, "rejoining should have cancelled the pending reap")
}
