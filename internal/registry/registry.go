// Package registry tracks every live room actor on the server, creating
// rooms on first join and reaping them a grace period after the last
// connection leaves.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/roomactor"
)

// Registry owns the set of active rooms.
type Registry struct {
	mu    sync.Mutex
	rooms map[engine.RoomID]*entry

	clock       clock.Clock
	bus         roomactor.Broadcaster
	defaultCfg  engine.Config
	reapGrace   time.Duration
}

type entry struct {
	actor    *roomactor.Actor
	reapTmr  clock.Timer
}

// New creates an empty registry. bus receives every broadcast from every
// room the registry creates.
func New(clk clock.Clock, bus roomactor.Broadcaster, defaultCfg engine.Config) *Registry {
	return &Registry{
		rooms:      map[engine.RoomID]*entry{},
		clock:      clk,
		bus:        bus,
		defaultCfg: defaultCfg,
		reapGrace:  time.Duration(defaultCfg.ReapGraceMS) * time.Millisecond,
	}
}

// NewRoomID mints an opaque, shareable room identifier.
func NewRoomID() engine.RoomID {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is effectively unrecoverable on any real host;
		// fall back to a low-quality id rather than panicking the server.
		return engine.RoomID(hex.EncodeToString([]byte(time.Now().String())[:6]))
	}
	return engine.RoomID(hex.EncodeToString(buf))
}

// GetOrCreate returns the room actor for id, creating a fresh room (hosted
// by host) if it doesn't exist yet. Any pending reap for an existing room
// is cancelled.
func (reg *Registry) GetOrCreate(id engine.RoomID, displayName string, host engine.SessionID) *roomactor.Actor {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if e, ok := reg.rooms[id]; ok {
		reg.cancelReapLocked(e)
		return e.actor
	}

	room, err := engine.NewRoom(id, displayName, host, reg.defaultCfg, engine.NewSeededRand())
	if err != nil {
		// Config is validated once at server startup; NewRoom cannot
		// legitimately fail here.
		panic(err)
	}
	actor := roomactor.New(id, room, reg.clock, reg.bus)
	reg.rooms[id] = &entry{actor: actor}
	return actor
}

// Get returns the room actor for id, if it currently exists.
func (reg *Registry) Get(id engine.RoomID) (*roomactor.Actor, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.rooms[id]
	if !ok {
		return nil, false
	}
	return e.actor, true
}

// NotifyEmpty schedules id for reaping after the configured grace period
// unless RoomOccupied is called first. Call this when the session layer
// observes the last connection leaving a room.
func (reg *Registry) NotifyEmpty(id engine.RoomID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.rooms[id]
	if !ok {
		return
	}
	reg.cancelReapLocked(e)
	e.reapTmr = reg.clock.AfterFunc(reg.reapGrace, func() {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if cur, ok := reg.rooms[id]; ok && cur == e {
			cur.actor.Stop()
			delete(reg.rooms, id)
		}
	})
}

// RoomOccupied cancels any pending reap for id, e.g. because a connection
// rejoined during the grace window.
func (reg *Registry) RoomOccupied(id engine.RoomID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if e, ok := reg.rooms[id]; ok {
		reg.cancelReapLocked(e)
	}
}

func (reg *Registry) cancelReapLocked(e *entry) {
	if e.reapTmr != nil {
		e.reapTmr.Stop()
		e.reapTmr = nil
	}
}
