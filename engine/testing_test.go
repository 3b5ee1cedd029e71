package engine

import (
	"testing"
	"time"
)

// newTestRoom builds a room with the reference 10/20 blinds and seats
// sessions in order starting at seat 0, each with the given buy-in. The
// room's host is the first session.
func newTestRoom(t *testing.T, buyIns ...int) *Room {
	t.Helper()

	cfg := Config{MaxSeats: 9, SmallBlind: 10, BigBlind: 20, MinBuyInBBs: 1}
	host := SessionID("p0")
	r, err := NewRoom("room1", "test room", host, cfg, NewDeterministicRand(1))
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}

	counter := 0
	nextID := func() RequestID {
		counter++
		return RequestID(string(rune('a' + counter)))
	}

	for seat, buyIn := range buyIns {
		session := SessionID("p" + string(rune('0'+seat)))
		req, err := r.RequestSeat(session, seat, buyIn, time.Now(), nextID)
		if err != nil {
			t.Fatalf("RequestSeat(seat %d): %v", seat, err)
		}
		if _, err := r.ApproveSeat(host, req.ID); err != nil {
			t.Fatalf("ApproveSeat(seat %d): %v", seat, err)
		}
	}

	if err := r.StartGame(); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return r
}

func mustAct(t *testing.T, r *Room, seat int, action ActionType, raiseAmount int) {
	t.Helper()
	if err := r.Act(seat, action, raiseAmount); err != nil {
		t.Fatalf("Act(seat %d, %v, %d): %v", seat, action, raiseAmount, err)
	}
}
