package poker

import (
	"math/rand/v2"
)

// Deck holds the cards not yet committed to a scenario, in canonical order
// (clubs 2..A, diamonds, hearts, spades) until drawn from. A Deck is owned
// by one goroutine; simulators reset and reuse it between trials.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck returns the 52-card universe minus the committed cards.
func NewDeck(committed Hand) *Deck {
	d := &Deck{cards: make([]Card, 0, NumCards)}
	d.Reset(committed)
	return d
}

// Reset refills the deck with every card not in committed, reusing its
// storage.
func (d *Deck) Reset(committed Hand) {
	d.cards = Remaining(committed).AppendCards(d.cards[:0])
	d.next = 0
}

// Cards returns the undrawn cards. The slice must not be modified.
func (d *Deck) Cards() []Card {
	return d.cards[d.next:]
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.cards) - d.next
}

// Draw removes n uniformly random cards from the deck by a partial
// Fisher-Yates pass over the undrawn cards. It returns nil when fewer than
// n cards remain. The returned slice aliases the deck and is valid until
// the next Reset.
func (d *Deck) Draw(rng *rand.Rand, n int) []Card {
	end := d.next + n
	if end > len(d.cards) {
		return nil
	}
	for i := d.next; i < end; i++ {
		j := i + rng.IntN(len(d.cards)-i)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	drawn := d.cards[d.next:end]
	d.next = end
	return drawn
}

// Remaining returns the live cards given the committed set, as a Hand.
func Remaining(committed Hand) Hand {
	return fullDeck &^ committed
}
