package engine

import "pokerroom/card"

// Player is room-scoped state for one seated-or-spectating participant,
// keyed by durable session identity. Connection identity lives one layer up,
// in the session manager, and is not part of this type.
type Player struct {
	SessionID   SessionID
	DisplayName string
	Bankroll    int
	SeatIndex   int // noSeat when spectating
	HoleCards   []card.Card

	RoundBet int // chips committed in the current betting round
	HandBet  int // chips committed since the hand started

	Folded bool
	AllIn  bool

	// WaitingForNextHand is set when a seat is filled mid-hand; cleared at
	// the start of the next hand. Such a player holds a seat but does not
	// participate in the hand already in progress.
	WaitingForNextHand bool
}

func newPlayer(session SessionID, name string, bankroll int) *Player {
	return &Player{
		SessionID:   session,
		DisplayName: name,
		Bankroll:    bankroll,
		SeatIndex:   noSeat,
	}
}

// placeBet commits up to amount chips from the player's bankroll, capping at
// whatever remains (an automatic all-in). It returns the amount actually
// committed.
func (p *Player) placeBet(amount int) int {
	if amount >= p.Bankroll {
		amount = p.Bankroll
		p.AllIn = true
	}
	p.Bankroll -= amount
	p.RoundBet += amount
	p.HandBet += amount
	return amount
}

func (p *Player) resetForNewHand() {
	p.HoleCards = nil
	p.RoundBet = 0
	p.HandBet = 0
	p.Folded = false
	p.AllIn = false
}

func (p *Player) resetForNewRound() {
	p.RoundBet = 0
}

// canAct reports whether the player may still receive a turn this hand.
func (p *Player) canAct() bool {
	return !p.Folded && !p.AllIn && p.SeatIndex != noSeat && !p.WaitingForNextHand
}
