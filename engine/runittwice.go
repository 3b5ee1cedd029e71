package engine

// offerRunItTwice opens the vote: every non-folded seat becomes an eligible
// voter. The room actor is responsible for starting the ~15s deadline timer
// and for calling RunItTwiceTimeout when it fires.
func (r *Room) offerRunItTwice() {
	r.RunItTwice.Offered = true
	r.RunItTwice.Votes = map[int]bool{}
	r.RunItTwice.EligibleVoters = map[int]bool{}
	for _, seat := range r.nonFoldedHandSeats() {
		r.RunItTwice.EligibleVoters[seat] = true
	}
}

// RunItTwiceVote records one seat's vote. Once every eligible seat has
// voted, the decision resolves immediately.
func (r *Room) RunItTwiceVote(seat int, accept bool) error {
	if !r.RunItTwice.Offered || r.RunItTwice.Decided {
		return ErrNotRunItTwice
	}
	if !r.RunItTwice.EligibleVoters[seat] {
		return ErrInvalidSeat
	}
	if _, voted := r.RunItTwice.Votes[seat]; voted {
		return ErrAlreadyVoted
	}
	r.RunItTwice.Votes[seat] = accept
	if len(r.RunItTwice.Votes) == len(r.RunItTwice.EligibleVoters) {
		return r.resolveRunItTwice()
	}
	return nil
}

// RunItTwiceTimeout is invoked by the room actor when the vote deadline
// elapses with votes outstanding; any seat that never voted counts as a
// decline.
func (r *Room) RunItTwiceTimeout() error {
	if !r.RunItTwice.Offered || r.RunItTwice.Decided {
		return nil
	}
	return r.resolveRunItTwice()
}

func (r *Room) resolveRunItTwice() error {
	allAccept := len(r.RunItTwice.Votes) == len(r.RunItTwice.EligibleVoters)
	if allAccept {
		for _, accepted := range r.RunItTwice.Votes {
			if !accepted {
				allAccept = false
				break
			}
		}
	}
	r.RunItTwice.Decided = true
	r.RunItTwice.Accepted = allAccept
	if allAccept {
		r.Board2 = append(r.Board2[:0:0], r.Board...)
	}
	return r.dealNextStreetOrShowdown()
}
