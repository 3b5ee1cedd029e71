// Package roomactor runs one single-writer execution context per room: a
// serial command queue that applies every external command and internal
// timer callback to one engine.Room, one at a time, then publishes the
// resulting room-state, player-state and game-event broadcasts.
package roomactor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/wire"
)

// recentEventBacklog bounds how many game-events a room actor keeps around
// for a reconnecting client to catch up on.
const recentEventBacklog = 64

// ErrStopped is returned by any command submitted after the actor has shut
// down.
var ErrStopped = errors.New("room actor stopped")

// Broadcaster is how the actor publishes to the outside world. The actor
// has no notion of sockets or even of which sessions are currently
// connected; it just computes what ought to be seen and hands it off.
type Broadcaster interface {
	RoomState(room engine.RoomID, snapshot engine.RoomSnapshot)
	PlayerState(room engine.RoomID, session engine.SessionID, view engine.PlayerView)
	GameEvent(room engine.RoomID, evt wire.GameEvent)
}

// Actor owns one engine.Room and the single goroutine that mutates it.
type Actor struct {
	id    engine.RoomID
	room  *engine.Room
	clock clock.Clock
	bus   Broadcaster

	cmds chan func()
	stop chan struct{}
	once sync.Once

	eventSeq     uint64
	recentEvents *lru.Cache[uint64, wire.GameEvent]

	ritTimer  clock.Timer
	advTimer  clock.Timer
	handTimer clock.Timer

	prevSnapshot engine.RoomSnapshot
}

// New creates a room actor and starts its goroutine.
func New(id engine.RoomID, room *engine.Room, clk clock.Clock, bus Broadcaster) *Actor {
	recent, err := lru.New[uint64, wire.GameEvent](recentEventBacklog)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// recentEventBacklog never is.
		panic(err)
	}
	a := &Actor{
		id:           id,
		room:         room,
		clock:        clk,
		bus:          bus,
		cmds:         make(chan func(), 64),
		stop:         make(chan struct{}),
		recentEvents: recent,
	}
	a.prevSnapshot = room.Snapshot()
	go a.run()
	return a
}

func (a *Actor) run() {
	for {
		select {
		case fn := <-a.cmds:
			fn()
		case <-a.stop:
			return
		}
	}
}

// Stop halts the actor's goroutine and cancels any outstanding timers. It
// does not touch the underlying room state.
func (a *Actor) Stop() {
	a.once.Do(func() {
		close(a.stop)
		a.cancelTimers()
	})
}

func (a *Actor) cancelTimers() {
	if a.ritTimer != nil {
		a.ritTimer.Stop()
	}
	if a.advTimer != nil {
		a.advTimer.Stop()
	}
	if a.handTimer != nil {
		a.handTimer.Stop()
	}
}

// submit runs fn on the actor's goroutine and blocks until it returns.
func (a *Actor) submit(fn func() error) error {
	done := make(chan error, 1)
	select {
	case a.cmds <- func() { done <- fn() }:
	case <-a.stop:
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-a.stop:
		return ErrStopped
	}
}

func (a *Actor) newRequestID() engine.RequestID {
	return engine.RequestID(uuid.NewString())
}

// afterMutation publishes the room-state/player-state diff, emits
// game-events for whatever changed, and (re)schedules the actor's internal
// timers to match the room's new state. Must only be called from the
// actor's own goroutine.
func (a *Actor) afterMutation() {
	// A running game still waiting for its first hand deals it as soon as
	// enough seats are filled.
	if a.room.GameRunning && !a.room.Paused && a.room.Phase == engine.PhaseWaiting {
		_ = a.room.StartHand()
	}

	snap := a.room.Snapshot()
	a.emitDiffEvents(a.prevSnapshot, snap)
	a.prevSnapshot = snap

	a.bus.RoomState(a.id, snap)
	for session := range a.room.Players {
		a.bus.PlayerState(a.id, session, a.room.PlayerSnapshot(session))
	}

	a.rescheduleTimers()
}

func (a *Actor) publishGameEvent(kind string, data any) {
	evt, err := encodeEvent(kind, data)
	if err != nil {
		return
	}
	a.eventSeq++
	a.recentEvents.Add(a.eventSeq, evt)
	a.bus.GameEvent(a.id, evt)
}

// RecentEvents returns the room's bounded tail of recent game-events,
// oldest first, for a client resuming a dropped connection to catch up on.
func (a *Actor) RecentEvents() ([]wire.GameEvent, error) {
	var events []wire.GameEvent
	err := a.submit(func() error {
		events = a.recentEvents.Values()
		return nil
	})
	return events, err
}

func encodeEvent(kind string, data any) (wire.GameEvent, error) {
	env, err := wire.Encode(kind, data)
	if err != nil {
		return wire.GameEvent{}, err
	}
	return wire.GameEvent{Kind: kind, Data: env.Payload}, nil
}

// rescheduleTimers stops any previously armed timer and arms whatever the
// current room state calls for: at most one of a run-it-twice deadline, an
// all-in auto-advance pace, or a next-hand auto-start delay is ever live at
// once, mirroring the mutual exclusivity of those states in engine.Room.
func (a *Actor) rescheduleTimers() {
	a.cancelTimers()
	a.ritTimer, a.advTimer, a.handTimer = nil, nil, nil

	cfg := a.room.Config

	switch {
	case a.room.RunItTwice.Offered && !a.room.RunItTwice.Decided:
		a.ritTimer = a.clock.AfterFunc(time.Duration(cfg.RunItTwiceDeadlineMS)*time.Millisecond, func() {
			_ = a.submit(func() error {
				decidedBefore := a.room.RunItTwice.Decided
				if err := a.room.RunItTwiceTimeout(); err != nil {
					return err
				}
				if a.room.RunItTwice.Decided && !decidedBefore {
					a.publishGameEvent(wire.GameEventRunItTwiceResult, wire.RunItTwiceResultData{Accepted: a.room.RunItTwice.Accepted})
				}
				a.afterMutation()
				return nil
			})
		})

	case a.room.GameRunning && !a.room.Paused && a.room.CurrentTurnSeat == engine.NoSeat &&
		a.room.Phase >= engine.PhasePreFlop && a.room.Phase <= engine.PhaseRiver:
		a.advTimer = a.clock.AfterFunc(time.Duration(cfg.AutoAdvanceMS)*time.Millisecond, func() {
			_ = a.submit(func() error {
				if err := a.room.AdvanceAllIn(); err != nil {
					return err
				}
				a.afterMutation()
				return nil
			})
		})

	case a.room.Phase == engine.PhaseShowdown && a.room.GameRunning && !a.room.Paused:
		a.handTimer = a.clock.AfterFunc(time.Duration(cfg.ShowdownDelayMS)*time.Millisecond, func() {
			_ = a.submit(func() error {
				if err := a.room.StartHand(); err != nil {
					return err
				}
				a.afterMutation()
				return nil
			})
		})
	}
}
