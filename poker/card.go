// Package poker provides the card model and hand evaluator used by the
// equity engine.
//
// Cards are single bits in a uint64 so that card sets (Hand) can be combined,
// intersected and counted with plain bitwise operations.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs]
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Rank is a card rank, 0 (deuce) through 12 (ace).
type Rank uint8

// Suit is a card suit.
type Suit uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const (
	numRanks = 13
	numSuits = 4
	// NumCards is the size of a full deck.
	NumCards = numRanks * numSuits

	rankMask = 0x1FFF
	fullDeck = Hand(1)<<NumCards - 1
)

var rankTokens = [numRanks]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// String returns the notation token for the rank ("2".."10", "J", "Q", "K", "A").
func (r Rank) String() string {
	if r > Ace {
		return "?"
	}
	return rankTokens[r]
}

// String returns the lowercase suit letter.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// Symbol returns the suit glyph.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Card is a single card encoded as one set bit.
type Card uint64

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(1) << (uint(suit)*numRanks + uint(rank))
}

// Index returns the card's bit position (0-51), or -1 for the zero card.
func (c Card) Index() int {
	if c == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(c))
}

// Valid reports whether c is exactly one of the 52 cards.
func (c Card) Valid() bool {
	return c != 0 && c&(c-1) == 0 && Hand(c)&^fullDeck == 0
}

// Rank returns the rank of the card.
func (c Card) Rank() Rank {
	return Rank(c.Index() % numRanks)
}

// Suit returns the suit of the card.
func (c Card) Suit() Suit {
	return Suit(c.Index() / numRanks)
}

// String returns the card in text notation, e.g. "As" or "10h".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().String()
}

// Pretty returns the card with a suit glyph, e.g. "A♠".
func (c Card) Pretty() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().Symbol()
}

// ParseCard parses a single card such as "As", "10h" or "qD".
func ParseCard(s string) (Card, error) {
	card, n, err := parseCardPrefix(s)
	if err != nil {
		return 0, err
	}
	if n != len(s) {
		return 0, fmt.Errorf("%w: %q has trailing characters", ErrInvalidCard, s)
	}
	return card, nil
}

// MustParseCard parses a card and panics on error (for tests and tables).
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a run of cards. Cards may be concatenated ("AsKh10d")
// or separated by whitespace or commas ("As Kh, 10d").
func ParseCards(s string) ([]Card, error) {
	cards := []Card{}
	rest := s
	for {
		rest = strings.TrimLeft(rest, " \t\n,")
		if rest == "" {
			return cards, nil
		}
		card, n, err := parseCardPrefix(rest)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
		rest = rest[n:]
	}
}

// MustParseCards parses cards and panics on error (for tests and tables).
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// parseCardPrefix parses one card from the start of s and returns how many
// bytes it consumed.
func parseCardPrefix(s string) (Card, int, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("%w: %q is too short", ErrInvalidCard, s)
	}

	var rank Rank
	n := 1
	switch s[0] {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		rank = Rank(s[0] - '2')
	case '1':
		if s[1] != '0' {
			return 0, 0, fmt.Errorf("%w: invalid rank in %q", ErrInvalidCard, s)
		}
		rank = Ten
		n = 2
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	default:
		return 0, 0, fmt.Errorf("%w: invalid rank %q", ErrInvalidCard, s[0])
	}

	if len(s) <= n {
		return 0, 0, fmt.Errorf("%w: missing suit in %q", ErrInvalidCard, s)
	}

	var suit Suit
	switch s[n] {
	case 'c', 'C':
		suit = Clubs
	case 'd', 'D':
		suit = Diamonds
	case 'h', 'H':
		suit = Hearts
	case 's', 'S':
		suit = Spades
	default:
		return 0, 0, fmt.Errorf("%w: invalid suit %q", ErrInvalidCard, s[n])
	}

	return NewCard(rank, suit), n + 1, nil
}

// FormatCards joins cards with a separator using text notation.
func FormatCards(cards []Card, sep string) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

// Hand is a set of cards. Multiple cards are represented by multiple set bits.
type Hand uint64

// NewHand creates a hand from cards. Duplicates collapse; use CheckDistinct
// first when duplicates must be reported.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// Add adds a card to the hand.
func (h *Hand) Add(c Card) {
	*h |= Hand(c)
}

// Remove removes a card from the hand.
func (h *Hand) Remove(c Card) {
	*h &^= Hand(c)
}

// Has reports whether the hand contains the card.
func (h Hand) Has(c Card) bool {
	return h&Hand(c) != 0
}

// Overlaps reports whether the two hands share a card.
func (h Hand) Overlaps(other Hand) bool {
	return h&other != 0
}

// Count returns the number of cards in the hand.
func (h Hand) Count() int {
	return bits.OnesCount64(uint64(h))
}

// Cards returns the cards in ascending bit order.
func (h Hand) Cards() []Card {
	return h.AppendCards(make([]Card, 0, h.Count()))
}

// AppendCards appends the cards in ascending bit order to dst.
func (h Hand) AppendCards(dst []Card) []Card {
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		dst = append(dst, Card(rest&-rest))
	}
	return dst
}

// SuitMask returns the 13-bit rank mask for a suit.
func (h Hand) SuitMask(s Suit) uint16 {
	return uint16(uint64(h)>>(uint(s)*numRanks)) & rankMask
}

// String returns the cards in text notation without separators.
func (h Hand) String() string {
	return FormatCards(h.Cards(), "")
}

// CheckDistinct verifies that no card appears twice across all groups and
// that every card is valid. It returns the union of all cards.
func CheckDistinct(groups ...[]Card) (Hand, error) {
	var seen Hand
	for _, group := range groups {
		for _, c := range group {
			if !c.Valid() {
				return 0, fmt.Errorf("%w: %#x is not a card", ErrInvalidCard, uint64(c))
			}
			if seen.Has(c) {
				return 0, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
			}
			seen.Add(c)
		}
	}
	return seen, nil
}

// Union returns the cards present in either hand.
func (h Hand) Union(other Hand) Hand {
	return h | other
}
