package engine

import "sort"

// PotLayer is one layer of a (possibly split) pot: the chips contributed up
// to Level by every seat that played this hand, folders included, and the
// non-folded seats eligible to win it.
type PotLayer struct {
	Level         int
	Amount        int
	EligibleSeats []int
}

// computePotLayers implements the side-pot algorithm: contributions holds
// every hand-participating seat's total chips committed this hand
// (including folders, whose excess flows into whichever layer they reached
// without making them eligible to win it); nonFolded is the set of seats
// still live at showdown. Chips a folded seat committed above the highest
// live level go to the top layer.
func computePotLayers(contributions map[int]int, nonFolded map[int]bool) []PotLayer {
	levelSet := map[int]struct{}{}
	for seat := range nonFolded {
		levelSet[contributions[seat]] = struct{}{}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	var layers []PotLayer
	prevLevel := 0
	for _, level := range levels {
		if level <= prevLevel {
			continue
		}
		amount := 0
		for seat, contrib := range contributions {
			_ = seat
			capped := contrib
			if capped > level {
				capped = level
			}
			prevCapped := contrib
			if prevCapped > prevLevel {
				prevCapped = prevLevel
			}
			amount += capped - prevCapped
		}
		if amount <= 0 {
			prevLevel = level
			continue
		}
		var eligible []int
		for seat := range nonFolded {
			if contributions[seat] >= level {
				eligible = append(eligible, seat)
			}
		}
		sort.Ints(eligible)
		layers = append(layers, PotLayer{Level: level, Amount: amount, EligibleSeats: eligible})
		prevLevel = level
	}
	if len(layers) > 0 {
		excess := 0
		for _, contrib := range contributions {
			if contrib > prevLevel {
				excess += contrib - prevLevel
			}
		}
		layers[len(layers)-1].Amount += excess
	}
	return layers
}
