package roomactor

import (
	"pokerroom/card"
	"pokerroom/engine"
	"pokerroom/internal/wire"
)

func cardStrings(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func potResultsToWire(results []engine.PotResult) []wire.PotResultData {
	out := make([]wire.PotResultData, len(results))
	for i, res := range results {
		out[i] = wire.PotResultData{
			Level:           res.Level,
			Amount:          res.Amount,
			Board:           res.Board,
			EligibleSeats:   res.EligibleSeats,
			WinningSeats:    res.WinningSeats,
			AmountPerWinner: res.AmountPerWinner,
			Remainder:       res.Remainder,
			RemainderSeat:   res.RemainderSeat,
		}
	}
	return out
}

// emitDiffEvents compares two consecutive snapshots and emits the
// game-events implied by the transitions between them: a new hand starting,
// a street being dealt, or a hand reaching showdown. Events tied to a
// specific command (seat requests, player actions, run-it-twice votes, host
// succession) are emitted directly by the command handlers instead, since
// the snapshot alone can't tell them apart from other causes of the same
// state change.
func (a *Actor) emitDiffEvents(prev, curr engine.RoomSnapshot) {
	if curr.HandNumber != prev.HandNumber && curr.Phase == engine.PhasePreFlop {
		a.publishGameEvent(wire.GameEventNewHand, wire.NewHandData{
			HandNumber:     curr.HandNumber,
			DealerSeat:     curr.DealerSeat,
			SmallBlindSeat: curr.SmallBlindSeat,
			BigBlindSeat:   curr.BigBlindSeat,
		})
	}

	if curr.Phase != prev.Phase {
		switch curr.Phase {
		case engine.PhaseFlop:
			a.publishGameEvent(wire.GameEventFlop, wire.StreetData{Board: cardStrings(curr.Board)})
		case engine.PhaseTurn:
			a.publishGameEvent(wire.GameEventTurn, wire.StreetData{Board: cardStrings(curr.Board)})
		case engine.PhaseRiver:
			a.publishGameEvent(wire.GameEventRiver, wire.StreetData{Board: cardStrings(curr.Board)})
		case engine.PhaseShowdown:
			a.emitShowdownEvents(curr)
		}
	}

	a.emitBustedEvents(prev, curr)
}

func (a *Actor) emitShowdownEvents(curr engine.RoomSnapshot) {
	if curr.Showdown == nil {
		return
	}
	entries := make([]wire.ShowdownEntryData, len(curr.Showdown.Entries))
	for i, e := range curr.Showdown.Entries {
		entries[i] = wire.ShowdownEntryData{
			Seat:      e.Seat,
			MustShow:  e.MustShow,
			Shown:     e.Shown,
			Won:       e.Won,
			HoleCards: cardStrings(e.HoleCards),
		}
	}
	if !curr.Showdown.NoShowdown {
		a.publishGameEvent(wire.GameEventShowdown, wire.ShowdownData{Entries: entries})
	}
	a.publishGameEvent(wire.GameEventHandWon, wire.HandWonData{
		NoShowdown: curr.Showdown.NoShowdown,
		PotResults: potResultsToWire(curr.Showdown.PotResults),
	})
}

// emitBustedEvents reports seats that held chips before and hold none now:
// StartHand vacates them, but the actor observes the bankroll hitting zero
// one mutation earlier, at the moment the hand that busted them ends.
func (a *Actor) emitBustedEvents(prev, curr engine.RoomSnapshot) {
	var busted []int
	for _, seat := range curr.Seats {
		if !seat.Occupied || seat.Bankroll > 0 {
			continue
		}
		for _, prevSeat := range prev.Seats {
			if prevSeat.Index == seat.Index && prevSeat.Occupied && prevSeat.Bankroll > 0 {
				busted = append(busted, seat.Index)
			}
		}
	}
	if len(busted) > 0 {
		a.publishGameEvent(wire.GameEventPlayersBusted, wire.PlayersBustedData{Seats: busted})
	}
}
