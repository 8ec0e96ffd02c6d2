package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrNotEnoughCards is returned when a deal needs more cards than remain.
var ErrNotEnoughCards = errors.New("not enough cards left in deck")

// Deck is a shuffled 52 card deck dealt from the top.
type Deck struct {
	cards [DeckSize]Card
	next  int
	rng   *rand.Rand // nil uses the global source
}

// NewDeck returns a deck shuffled with rng. Two decks built from RNGs with
// the same seed deal the same cards in the same order.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for i := range DeckSize {
		d.cards[i] = CardFromIndex(i)
	}
	d.Shuffle()
	return d
}

// Shuffle gathers every card back and shuffles (Fisher-Yates).
func (d *Deck) Shuffle() {
	d.next = 0
	intN := rand.IntN
	if d.rng != nil {
		intN = d.rng.IntN
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := intN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal takes n cards off the top, or nil if fewer than n remain.
// The returned slice is a copy and may be retained by the caller.
func (d *Deck) Deal(n int) []Card {
	if n < 0 || d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// DealHands deals players hands of size cards, one card to each player in
// turn, the way cards are dealt at a table.
func (d *Deck) DealHands(players, size int) ([][]Card, error) {
	if players < 0 || size < 0 {
		return nil, fmt.Errorf("invalid deal of %d hands of %d", players, size)
	}
	if need := players * size; need > d.CardsRemaining() {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughCards, need, d.CardsRemaining())
	}
	hands := make([][]Card, players)
	for p := range hands {
		hands[p] = make([]Card, 0, size)
	}
	for range size {
		for p := range hands {
			hands[p] = append(hands[p], d.cards[d.next])
			d.next++
		}
	}
	return hands, nil
}

// CardsRemaining returns the number of cards left to deal.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
