package engine

import "pokerroom/card"

// fold marks seat folded and applies the same consequences Act's
// ActionFold branch does: a pot recompute, and — when the folding seat
// held the turn — afterAction's turn-advance/no-showdown-win/round-complete
// handling. A seat can also fold while it isn't to act (leave-seat or a
// disconnect mid-hand), in which case the turn is untouched, but the pot
// and the "one seat left" win still have to be checked: folding out of
// turn can just as well drop the hand to a single remaining player.
func (r *Room) fold(seat int) error {
	p := r.playerAt(seat)
	if p == nil {
		return ErrInvalidSeat
	}
	p.Folded = true
	r.recomputePot()

	if seat != r.CurrentTurnSeat {
		remaining := r.nonFoldedHandSeats()
		if len(remaining) == 1 {
			return r.endHandNoShowdown(remaining[0])
		}
		return nil
	}
	return r.afterAction()
}

// StartGame flips the room into a running state; StartHand can now be
// called (directly, or by the room actor as soon as enough seats fill).
func (r *Room) StartGame() error {
	if r.GameRunning {
		return ErrGameAlreadyRunning
	}
	r.GameRunning = true
	r.Paused = false
	return nil
}

// StopGame ends the session outright. Any hand in progress is abandoned;
// per-hand state is cleared and the phase returns to WAITING. The room
// actor is responsible for cancelling any pending auto-advance / run-it-
// twice timers when it observes this transition.
func (r *Room) StopGame() error {
	r.GameRunning = false
	r.Paused = false
	r.Phase = PhaseWaiting
	r.Showdown = nil
	r.RunItTwice.reset()
	r.CurrentTurnSeat = noSeat
	return nil
}

func (r *Room) PauseGame() error {
	if !r.GameRunning {
		return ErrGameNotRunning
	}
	r.Paused = true
	return nil
}

func (r *Room) ResumeGame() error {
	if !r.GameRunning {
		return ErrGameNotRunning
	}
	r.Paused = false
	return nil
}

// TransferHostIfNeeded hands the host role to the next remaining player, in
// join order, when leavingSession is the current host. It is a no-op
// (changed == false) when someone else is leaving. If no other player
// remains, the room is left hostless until the next Join.
func (r *Room) TransferHostIfNeeded(leavingSession SessionID) (newHost SessionID, changed bool) {
	if r.Host != leavingSession {
		return r.Host, false
	}
	for _, session := range r.JoinOrder {
		if session == leavingSession {
			continue
		}
		if _, ok := r.Players[session]; ok {
			r.Host = session
			return session, true
		}
	}
	r.Host = ""
	return "", true
}

// EnablePrivileged and DisablePrivileged gate the "god mode" fixture hooks.
// The shared-secret comparison itself is the caller's responsibility (the
// room actor holds the configured secret, not the engine).
func (r *Room) EnablePrivileged() { r.Privileged = true }
func (r *Room) DisablePrivileged() {
	r.Privileged = false
	r.riggedDeckOrder = nil
	r.riggedDealerSeat = noSeat
}

// SetRiggedHand pins the deck order (and, optionally, the dealer seat) for
// the next StartHand only; it is then cleared automatically. order is given
// in the order cards will be dealt/burned, i.e. reversed for CardList's
// pop-from-the-end semantics by NewRiggedDeck. This never affects gameplay
// outside of this deliberate fixture and requires privileged mode.
func (r *Room) SetRiggedHand(order []card.Card, dealerSeat int) error {
	if !r.Privileged {
		return ErrPrivilegedDisabled
	}
	r.riggedDeckOrder = order
	if dealerSeat >= 0 {
		r.riggedDealerSeat = dealerSeat
	}
	return nil
}
