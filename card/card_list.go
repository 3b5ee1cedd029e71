package card

import "math/rand"

// CardList is a mutable stack of cards, used as a deck or a discard pile.
type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

// Count returns the number of cards remaining.
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) CardsBytes() []byte {
	return Cards2bytes(ds)
}

// Shuffle performs an in-place Fisher-Yates shuffle using rng. Callers own
// the random source so that shuffles can be seeded deterministically in
// tests or from a cryptographic source in production.
func (ds CardList) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ds), func(i, j int) {
		ds[i], ds[j] = ds[j], ds[i]
	})
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

// PopCard removes and returns the card on top of the list (its last element).
func (ds *CardList) PopCard() Card {
	totalCount := ds.Count()
	if totalCount == 0 {
		return CardInvalid
	}
	card := (*ds)[totalCount-1]
	*ds = (*ds)[:totalCount-1]
	return card
}

// PopCards removes and returns the top size cards, in the same order
// successive PopCard calls would deliver them (first returned == first
// popped == the current last element).
func (ds *CardList) PopCards(size int) ([]Card, bool) {
	total := ds.Count()
	if size > total {
		return nil, false
	}
	cards := make([]Card, size)
	for i := 0; i < size; i++ {
		cards[i] = (*ds)[total-1-i]
	}
	*ds = (*ds)[:total-size]
	return cards, true
}
