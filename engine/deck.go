package engine

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"pokerroom/card"
)

// NewSeededRand returns a math/rand source seeded from a cryptographically
// random 64-bit value. Deterministic seeds (via NewDeterministicRand) are
// permitted only in tests and for the privileged rigged-hand fixture.
func NewSeededRand() *mathrand.Rand {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is a host-environment problem, not a
		// recoverable game error; an unseeded shuffle would be a silent
		// fairness defect, so we panic rather than fall back.
		panic("engine: failed to read crypto/rand seed: " + err.Error())
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]))
	return mathrand.New(mathrand.NewSource(seed))
}

// NewDeterministicRand returns a reproducible source for tests and for the
// privileged-mode rigged-hand fixture.
func NewDeterministicRand(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

// NewShuffledDeck builds a fresh 52-card deck and shuffles it with an
// unbiased Fisher-Yates using rng.
func NewShuffledDeck(rng *mathrand.Rand) card.CardList {
	var deck card.CardList
	deck.Init(card.AllCards())
	deck.Shuffle(rng)
	return deck
}

// NewRiggedDeck returns a deck whose top cards (the first ones popped by
// CardList.PopCard, which pops from the end) match order exactly; any
// remaining cards are shuffled beneath them. Used only by the privileged
// set-rigged-hand fixture, never by normal gameplay.
func NewRiggedDeck(rng *mathrand.Rand, order []card.Card) card.CardList {
	used := make(map[card.Card]bool, len(order))
	for _, c := range order {
		used[c] = true
	}
	var rest []card.Card
	for _, c := range card.AllCards() {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	var restDeck card.CardList
	restDeck.Init(rest)
	restDeck.Shuffle(rng)

	var deck card.CardList
	deck.Init(nil)
	deck.Add([]card.Card(restDeck)...)
	// PopCard removes from the end, so cards that must be dealt first go
	// at the end of the slice, in reverse of deal order.
	reversed := make([]card.Card, len(order))
	for i, c := range order {
		reversed[len(order)-1-i] = c
	}
	deck.Add(reversed...)
	return deck
}
