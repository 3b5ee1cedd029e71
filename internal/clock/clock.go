// Package clock re-exports the quartz scheduler abstraction used for the
// room actor's timers (auto-advance delay, run-it-twice deadline, next-hand
// delay) and the registry's reap grace window. Routing every timer
// through this single type, rather than calling time.AfterFunc directly,
// is what lets tests replace real time with a fake clock.
package clock

import (
	"testing"

	"github.com/coder/quartz"
)

// Clock is the scheduler surface a room actor needs.
type Clock = quartz.Clock

// Timer is the handle returned by Clock.AfterFunc, used to cancel a pending
// callback when the state that scheduled it no longer applies.
type Timer = quartz.Timer

// New returns the production clock, backed by the real wall clock.
func New() Clock {
	return quartz.NewReal()
}

// NewMock returns a fake clock for deterministic tests; advance it with
// mock.Advance(d) or mock.Set(t).
func NewMock(tb testing.TB) *quartz.Mock {
	return quartz.NewMock(tb)
}
