package engine

import (
	"sort"

	"pokerroom/card"
)

// PotResult describes how one pot layer (or, under run-it-twice, one half
// of one layer) was awarded.
type PotResult struct {
	Level           int
	Amount          int
	Board           int // 0 single board; 1 or 2 under run-it-twice
	EligibleSeats   []int
	WinningSeats    []int
	AmountPerWinner int
	Remainder       int
	RemainderSeat   int // noSeat if there was no remainder
}

// ShowdownEntry is one seat's public status in the showdown snapshot.
// HoleCards is only ever populated while Shown is true; a mucked or
// not-yet-revealed hand carries no cards for other clients to see.
type ShowdownEntry struct {
	Seat      int
	MustShow  bool
	Shown     bool
	Won       bool
	HoleCards []card.Card
}

// ShowdownSnapshot is the frozen record of how the last hand ended.
type ShowdownSnapshot struct {
	NoShowdown bool // true when the pot was awarded uncontested (everyone else folded)
	Entries    []ShowdownEntry
	PotResults []PotResult
}

func (r *Room) endHandNoShowdown(winnerSeat int) error {
	r.Phase = PhaseShowdown
	r.CurrentTurnSeat = noSeat

	total := 0
	for _, seat := range r.handSeats() {
		total += r.playerAt(seat).HandBet
	}
	r.playerAt(winnerSeat).Bankroll += total

	r.Showdown = &ShowdownSnapshot{
		NoShowdown: true,
		Entries:    []ShowdownEntry{{Seat: winnerSeat, Won: true}},
	}
	r.Pot = 0
	return nil
}

func (r *Room) goToShowdown() error {
	r.Phase = PhaseShowdown
	r.CurrentTurnSeat = noSeat

	nonFolded := r.nonFoldedHandSeats()
	contributions := map[int]int{}
	for _, seat := range r.handSeats() {
		contributions[seat] = r.playerAt(seat).HandBet
	}
	nonFoldedSet := map[int]bool{}
	for _, seat := range nonFolded {
		nonFoldedSet[seat] = true
	}

	layers := computePotLayers(contributions, nonFoldedSet)
	results := r.settleLayers(layers)
	r.buildShowdownSnapshot(nonFolded, results)
	r.Pot = 0
	return nil
}

func (r *Room) settleLayers(layers []PotLayer) []PotResult {
	var results []PotResult
	if r.RunItTwice.Accepted {
		for _, layer := range layers {
			half2 := layer.Amount / 2
			half1 := layer.Amount - half2 // odd chip goes to board 1
			results = append(results,
				r.awardLayer(layer, half1, r.Board, 1),
				r.awardLayer(layer, half2, r.Board2, 2),
			)
		}
		return results
	}
	for _, layer := range layers {
		results = append(results, r.awardLayer(layer, layer.Amount, r.Board, 0))
	}
	return results
}

func (r *Room) awardLayer(layer PotLayer, amount int, board []card.Card, boardIdx int) PotResult {
	var best HandValue
	var winners []int
	for i, seat := range layer.EligibleSeats {
		hand := append(append([]card.Card{}, r.playerAt(seat).HoleCards...), board...)
		hv := Evaluate(hand)
		switch {
		case i == 0:
			best = hv
			winners = []int{seat}
		case hv.Greater(best):
			best = hv
			winners = []int{seat}
		case hv.Equal(best):
			winners = append(winners, seat)
		}
	}

	share := 0
	remainder := 0
	if len(winners) > 0 {
		share = amount / len(winners)
		remainder = amount % len(winners)
	}
	remainderSeat := noSeat
	if remainder > 0 {
		remainderSeat = r.nearestClockwiseFromSB(winners)
	}
	for _, w := range winners {
		amt := share
		if w == remainderSeat {
			amt += remainder
		}
		r.playerAt(w).Bankroll += amt
	}

	sort.Ints(winners)
	return PotResult{
		Level:           layer.Level,
		Amount:          amount,
		Board:           boardIdx,
		EligibleSeats:   append([]int{}, layer.EligibleSeats...),
		WinningSeats:    winners,
		AmountPerWinner: share,
		Remainder:       remainder,
		RemainderSeat:   remainderSeat,
	}
}

// nearestClockwiseFromSB finds, among winners, the one nearest clockwise
// from (and including) the small-blind seat. This is the documented,
// order-independent tiebreaker for odd-chip remainders.
func (r *Room) nearestClockwiseFromSB(winners []int) int {
	if len(winners) == 0 {
		return noSeat
	}
	winnerSet := map[int]bool{}
	for _, w := range winners {
		winnerSet[w] = true
	}
	n := len(r.Seats)
	for i := 0; i < n; i++ {
		seat := (r.SmallBlindSeat + i) % n
		if winnerSet[seat] {
			return seat
		}
	}
	return winners[0]
}

func (r *Room) buildShowdownSnapshot(nonFolded []int, results []PotResult) {
	winners := map[int]bool{}
	for _, res := range results {
		for _, w := range res.WinningSeats {
			winners[w] = true
		}
	}
	mustShow := map[int]bool{}
	if r.LastAggressor != noSeat {
		mustShow[r.LastAggressor] = true
	}
	for w := range winners {
		mustShow[w] = true
	}

	entries := make([]ShowdownEntry, 0, len(nonFolded))
	for _, seat := range nonFolded {
		entry := ShowdownEntry{
			Seat:     seat,
			MustShow: mustShow[seat],
			Shown:    mustShow[seat],
			Won:      winners[seat],
		}
		if entry.Shown {
			entry.HoleCards = append([]card.Card{}, r.playerAt(seat).HoleCards...)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seat < entries[j].Seat })

	r.Showdown = &ShowdownSnapshot{Entries: entries, PotResults: results}
}

// ShowHand reveals a seat's hole cards at showdown.
func (r *Room) ShowHand(seat int) error {
	if r.Showdown == nil {
		return ErrNotAtShowdown
	}
	for i := range r.Showdown.Entries {
		if r.Showdown.Entries[i].Seat == seat {
			r.Showdown.Entries[i].Shown = true
			r.Showdown.Entries[i].HoleCards = append([]card.Card{}, r.playerAt(seat).HoleCards...)
			return nil
		}
	}
	return ErrInvalidSeat
}

// MuckHand hides a seat's hole cards at showdown, unless that seat is
// required to show (a winner or the last aggressor).
func (r *Room) MuckHand(seat int) error {
	if r.Showdown == nil {
		return ErrNotAtShowdown
	}
	for i := range r.Showdown.Entries {
		if r.Showdown.Entries[i].Seat == seat {
			if r.Showdown.Entries[i].MustShow {
				return ErrMustShowCards
			}
			r.Showdown.Entries[i].Shown = false
			r.Showdown.Entries[i].HoleCards = nil
			return nil
		}
	}
	return ErrInvalidSeat
}
