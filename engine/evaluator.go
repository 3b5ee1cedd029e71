package engine

import (
	"sort"

	"pokerroom/card"
)

// Evaluate returns the best HandValue obtainable from up to 7 cards. With
// fewer than 5 cards the result is a partial evaluation for UI hinting only
// (Partial is set); it must never be used to adjudicate a pot.
func Evaluate(cards []card.Card) HandValue {
	if len(cards) < 5 {
		hv := evalBest5(cards)
		hv.Partial = true
		return hv
	}
	best := HandValue{}
	first := true
	forEachCombination(len(cards), 5, func(idx []int) {
		hand := make([]card.Card, 5)
		for i, j := range idx {
			hand[i] = cards[j]
		}
		hv := evalBest5(hand)
		if first || hv.Greater(best) {
			best = hv
			first = false
		}
	})
	return best
}

// forEachCombination invokes f once per k-of-n index combination.
func forEachCombination(n, k int, f func(idx []int)) {
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		f(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// evalBest5 scores exactly the cards given (up to 5, or fewer for partial
// evaluation) directly from rank/suit counts, without any precomputed table.
func evalBest5(cards []card.Card) HandValue {
	ranks := make([]int, len(cards))
	suitCounts := map[card.Suit]int{}
	rankCounts := map[int]int{}
	for i, c := range cards {
		r := c.HandRank()
		ranks[i] = r
		rankCounts[r]++
		suitCounts[c.Suit()]++
	}

	isFlush := len(cards) == 5 && suitCounts[cards[0].Suit()] == 5

	distinct := make([]int, 0, len(rankCounts))
	for r := range rankCounts {
		distinct = append(distinct, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	straightHigh, isStraight := detectStraight(distinct)

	if isStraight && isFlush {
		cat := CategoryStraightFlush
		if straightHigh == 14 {
			cat = CategoryRoyalFlush
		}
		return HandValue{Category: cat, Tiebreak: []int{straightHigh}}
	}

	// Group ranks by multiplicity, each group sorted rank-desc, groups
	// ordered by count-desc then rank-desc — this is the shared tiebreak
	// shape for quads/full-house/trips/two-pair/pair/high-card.
	type group struct {
		rank  int
		count int
	}
	groups := make([]group, 0, len(rankCounts))
	for r, c := range rankCounts {
		groups = append(groups, group{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	tiebreak := make([]int, 0, len(groups))
	for _, g := range groups {
		tiebreak = append(tiebreak, g.rank)
	}

	switch {
	case groups[0].count == 4:
		return HandValue{Category: CategoryQuads, Tiebreak: tiebreak}
	case groups[0].count == 3 && len(groups) > 1 && groups[1].count >= 2:
		return HandValue{Category: CategoryFullHouse, Tiebreak: tiebreak}
	case isFlush:
		return HandValue{Category: CategoryFlush, Tiebreak: tiebreak}
	case isStraight:
		return HandValue{Category: CategoryStraight, Tiebreak: []int{straightHigh}}
	case groups[0].count == 3:
		return HandValue{Category: CategoryTrips, Tiebreak: tiebreak}
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		return HandValue{Category: CategoryTwoPair, Tiebreak: tiebreak}
	case groups[0].count == 2:
		return HandValue{Category: CategoryPair, Tiebreak: tiebreak}
	default:
		return HandValue{Category: CategoryHighCard, Tiebreak: tiebreak}
	}
}

// detectStraight looks for 5 consecutive ranks among distinct (sorted
// descending), including the wheel (A-2-3-4-5, high card 5).
func detectStraight(distinct []int) (high int, ok bool) {
	if len(distinct) < 5 {
		return 0, false
	}
	// Wheel: A counts low as well as high.
	hasWheel := func() bool {
		want := map[int]bool{14: true, 2: true, 3: true, 4: true, 5: true}
		for r := range want {
			found := false
			for _, d := range distinct {
				if d == r {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	for i := 0; i+4 < len(distinct); i++ {
		if distinct[i]-distinct[i+4] == 4 {
			consecutive := true
			for j := i; j < i+4; j++ {
				if distinct[j]-distinct[j+1] != 1 {
					consecutive = false
					break
				}
			}
			if consecutive {
				return distinct[i], true
			}
		}
	}
	if hasWheel() {
		return 5, true
	}
	return 0, false
}
