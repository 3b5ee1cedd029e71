package engine

import "pokerroom/card"

// clockwiseFrom returns the occupied seats starting immediately after from
// and walking clockwise, wrapping around, with from itself (if occupied)
// last.
func (r *Room) clockwiseFrom(from int) []int {
	n := len(r.Seats)
	var out []int
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if r.Seats[seat] != "" {
			out = append(out, seat)
		}
	}
	return out
}

// StartHand begins a new hand: validates preconditions, resets per-hand
// state, shuffles the deck, advances the button, posts blinds, deals hole
// cards and sets the first seat to act.
func (r *Room) StartHand() error {
	if !r.GameRunning {
		return ErrGameNotRunning
	}
	if r.Phase != PhaseWaiting && r.Phase != PhaseShowdown {
		return ErrHandInProgress
	}

	// Busted seats (bankroll hit zero during the previous hand) are vacated
	// now; the player remains a spectator.
	for _, seat := range r.occupiedSeats() {
		p := r.playerAt(seat)
		if p.Bankroll <= 0 {
			r.Seats[seat] = ""
			p.SeatIndex = noSeat
		}
	}

	active := 0
	for _, seat := range r.occupiedSeats() {
		if !r.playerAt(seat).WaitingForNextHand {
			active++
		}
	}
	if active < 2 {
		return ErrNotEnoughPlayers
	}

	r.HandNumber++
	r.Showdown = nil
	r.RunItTwice.reset()
	r.Board = nil
	r.Board2 = nil

	for _, seat := range r.occupiedSeats() {
		p := r.playerAt(seat)
		p.resetForNewHand()
		p.WaitingForNextHand = false
	}

	if len(r.riggedDeckOrder) > 0 {
		r.Deck = NewRiggedDeck(r.rng, r.riggedDeckOrder)
		r.riggedDeckOrder = nil
	} else {
		r.Deck = NewShuffledDeck(r.rng)
	}

	occ := r.occupiedSeats()
	if r.riggedDealerSeat != noSeat && r.Seats[r.riggedDealerSeat] != "" {
		r.DealerSeat = r.riggedDealerSeat
	} else if r.DealerSeat == noSeat || r.Seats[r.DealerSeat] == "" {
		r.DealerSeat = occ[0]
	} else {
		r.DealerSeat = r.nextOccupiedSeat(r.DealerSeat)
	}
	r.riggedDealerSeat = noSeat

	seats := r.handSeats()
	headsUp := len(seats) == 2

	if headsUp {
		r.SmallBlindSeat = r.DealerSeat
		r.BigBlindSeat = r.nextOccupiedSeat(r.DealerSeat)
	} else {
		r.SmallBlindSeat = r.nextOccupiedSeat(r.DealerSeat)
		r.BigBlindSeat = r.nextOccupiedSeat(r.SmallBlindSeat)
	}

	r.playerAt(r.SmallBlindSeat).placeBet(r.Config.SmallBlind)
	r.playerAt(r.BigBlindSeat).placeBet(r.Config.BigBlind)

	r.CurrentBet = r.Config.BigBlind
	r.MinRaise = r.Config.BigBlind
	r.LastAggressor = r.BigBlindSeat
	// The big blind is deliberately absent from ActedThisRound here: a
	// limped round must return to them with zero amount-to-call and the
	// option to check or raise.
	r.ActedThisRound = map[int]bool{}

	for _, seat := range r.clockwiseFrom(r.DealerSeat) {
		p := r.playerAt(seat)
		if p.WaitingForNextHand {
			continue
		}
		p.HoleCards = []card.Card{r.Deck.PopCard(), r.Deck.PopCard()}
	}

	r.Phase = PhasePreFlop
	if headsUp {
		r.CurrentTurnSeat = r.DealerSeat
	} else {
		first := r.nextActingSeat(r.BigBlindSeat)
		r.CurrentTurnSeat = first
	}

	r.recomputePot()
	return nil
}

// LegalActions reports what the seat to act may legally do right now.
func (r *Room) LegalActions(seat int) (actions []ActionType, amountToCall int, minRaise int, err error) {
	if r.Phase < PhasePreFlop || r.Phase > PhaseRiver {
		return nil, 0, 0, ErrHandNotInProgress
	}
	p := r.playerAt(seat)
	if p == nil {
		return nil, 0, 0, ErrInvalidSeat
	}
	if seat != r.CurrentTurnSeat {
		return nil, 0, 0, ErrNotYourTurn
	}
	if p.Folded || p.AllIn {
		return nil, 0, 0, invalidState("seat to act is folded or all-in")
	}
	amountToCall = r.CurrentBet - p.RoundBet
	minRaise = r.MinRaise
	actions = []ActionType{ActionFold}
	if amountToCall <= 0 {
		actions = append(actions, ActionCheck)
	} else {
		actions = append(actions, ActionCall)
	}
	if p.Bankroll > 0 {
		actions = append(actions, ActionBet, ActionRaise, ActionAllIn)
	}
	return actions, amountToCall, minRaise, nil
}

// Act applies a betting action from the seat currently to act. raiseAmount
// is the raise increment above the current bet; it is ignored for actions
// other than Bet/Raise.
func (r *Room) Act(seat int, action ActionType, raiseAmount int) error {
	if r.Phase < PhasePreFlop || r.Phase > PhaseRiver {
		return ErrHandNotInProgress
	}
	if seat != r.CurrentTurnSeat {
		return ErrNotYourTurn
	}
	p := r.playerAt(seat)
	if p == nil {
		return ErrInvalidSeat
	}
	if p.Folded || p.AllIn {
		return invalidState("seat to act is folded or all-in")
	}

	amountToCall := r.CurrentBet - p.RoundBet

	switch action {
	case ActionFold:
		p.Folded = true

	case ActionCheck:
		if amountToCall > 0 {
			return ErrMustCallOrRaise
		}

	case ActionCall:
		if amountToCall > 0 {
			p.placeBet(amountToCall)
		}

	case ActionBet, ActionRaise:
		if raiseAmount <= 0 {
			return ErrRaiseTooSmall
		}
		wantCommit := amountToCall + raiseAmount
		shortAllIn := wantCommit >= p.Bankroll
		if !shortAllIn && raiseAmount < r.MinRaise {
			return ErrRaiseTooSmall
		}
		p.placeBet(wantCommit)
		r.applyRaise(seat, p)

	case ActionAllIn:
		if p.Bankroll <= 0 {
			return invalidState("all-in with no chips remaining")
		}
		p.placeBet(p.Bankroll)
		r.applyRaise(seat, p)

	default:
		return invalidState("unknown action type")
	}

	if action != ActionFold {
		r.ActedThisRound[seat] = true
	}
	r.recomputePot()

	return r.afterAction()
}

// applyRaise updates current-bet/min-raise/last-aggressor bookkeeping and
// decides whether the action reopens the round for players who already
// acted. raise-by < min-raise ("short all-in") never reopens.
func (r *Room) applyRaise(seat int, p *Player) {
	raiseBy := p.RoundBet - r.CurrentBet
	if raiseBy <= 0 {
		if p.RoundBet > r.CurrentBet {
			r.CurrentBet = p.RoundBet
		}
		return
	}
	fullRaise := raiseBy >= r.MinRaise
	r.CurrentBet = p.RoundBet
	r.LastAggressor = seat
	if fullRaise {
		r.MinRaise = raiseBy
		r.ActedThisRound = map[int]bool{}
	}
}

func (r *Room) isRoundComplete() bool {
	for _, seat := range r.nonFoldedHandSeats() {
		p := r.playerAt(seat)
		if p.AllIn {
			continue
		}
		if !r.ActedThisRound[seat] {
			return false
		}
		if p.RoundBet != r.CurrentBet {
			return false
		}
	}
	return true
}

func (r *Room) allRemainingAllIn() bool {
	for _, seat := range r.nonFoldedHandSeats() {
		if !r.playerAt(seat).AllIn {
			return false
		}
	}
	return true
}

func (r *Room) afterAction() error {
	remaining := r.nonFoldedHandSeats()
	if len(remaining) == 1 {
		return r.endHandNoShowdown(remaining[0])
	}
	if !r.isRoundComplete() {
		next := r.nextActingSeat(r.CurrentTurnSeat)
		if next != noSeat {
			r.CurrentTurnSeat = next
			return nil
		}
	}
	return r.onRoundComplete()
}

// onRoundComplete is called once every non-folded, non-all-in seat has
// matched the current bet (or there is no one left who can act). It either
// offers run-it-twice, or deals the next street / goes to showdown.
func (r *Room) onRoundComplete() error {
	if r.allRemainingAllIn() && r.Phase != PhaseRiver {
		if !r.RunItTwice.Offered && !r.RunItTwice.Decided {
			r.offerRunItTwice()
			r.CurrentTurnSeat = noSeat
			return nil
		}
		if r.RunItTwice.Offered && !r.RunItTwice.Decided {
			r.CurrentTurnSeat = noSeat
			return nil
		}
	}
	if err := r.dealNextStreetOrShowdown(); err != nil {
		return err
	}
	if r.Phase == PhaseShowdown {
		return nil
	}
	if r.allRemainingAllIn() {
		r.CurrentTurnSeat = noSeat
		return nil
	}
	r.CurrentTurnSeat = r.nextActingSeat(r.DealerSeat)
	return nil
}

// AdvanceAllIn deals the next pending street while all remaining players
// are all-in. It is invoked by the room actor's auto-advance timer, paced
// with a short display delay between streets.
func (r *Room) AdvanceAllIn() error {
	if r.Phase == PhaseShowdown {
		return nil
	}
	if !r.allRemainingAllIn() {
		return invalidState("auto-advance requested while a seat can still act")
	}
	if r.RunItTwice.Offered && !r.RunItTwice.Decided {
		return nil
	}
	return r.dealNextStreetOrShowdown()
}

func (r *Room) dealNextStreetOrShowdown() error {
	for _, seat := range r.nonFoldedHandSeats() {
		r.playerAt(seat).resetForNewRound()
	}
	r.CurrentBet = 0
	r.MinRaise = r.Config.BigBlind
	r.ActedThisRound = map[int]bool{}

	dealStreet := func(board *[]card.Card, n int) {
		r.Deck.PopCard() // burn
		cards, _ := r.Deck.PopCards(n)
		*board = append(*board, cards...)
	}

	switch r.Phase {
	case PhasePreFlop:
		dealStreet(&r.Board, 3)
		if r.RunItTwice.Accepted {
			dealStreet(&r.Board2, 3)
		}
		r.Phase = PhaseFlop
	case PhaseFlop:
		dealStreet(&r.Board, 1)
		if r.RunItTwice.Accepted {
			dealStreet(&r.Board2, 1)
		}
		r.Phase = PhaseTurn
	case PhaseTurn:
		dealStreet(&r.Board, 1)
		if r.RunItTwice.Accepted {
			dealStreet(&r.Board2, 1)
		}
		r.Phase = PhaseRiver
	case PhaseRiver:
		return r.goToShowdown()
	default:
		return invalidState("cannot deal a street from phase " + r.Phase.String())
	}
	return nil
}

func (r *Room) recomputePot() {
	total := 0
	for _, seat := range r.handSeats() {
		total += r.playerAt(seat).HandBet
	}
	r.Pot = total
}
