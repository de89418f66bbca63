package analysis

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lox/pokerequity/poker"
)

// Combo is one hole-card pair with its relative weight.
type Combo struct {
	Cards  poker.Hand
	Weight float64
}

// HoleSource describes what an opponent may hold. Sample draws one pair and
// reports false when the draw collides with dead, in which case the caller
// discards the whole trial. Combos lists every live pair with its weight
// for exhaustive enumeration.
type HoleSource interface {
	Sample(rng *rand.Rand, dead poker.Hand) (poker.Hand, bool)
	Combos(dead poker.Hand) []Combo
	String() string
}

// FixedHole is an opponent whose two cards are known.
type FixedHole [2]poker.Card

// NewFixedHole parses a known hole pair such as "QhQd".
func NewFixedHole(text string) (FixedHole, error) {
	cards, err := poker.ParseCards(text)
	if err != nil {
		return FixedHole{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if len(cards) != 2 {
		return FixedHole{}, validationf("hole %q must have exactly 2 cards, got %d", text, len(cards))
	}
	return FixedHole{cards[0], cards[1]}, nil
}

func (f FixedHole) hand() poker.Hand { return poker.NewHand(f[0], f[1]) }

func (f FixedHole) Sample(_ *rand.Rand, dead poker.Hand) (poker.Hand, bool) {
	h := f.hand()
	return h, !h.Overlaps(dead)
}

func (f FixedHole) Combos(dead poker.Hand) []Combo {
	if f.hand().Overlaps(dead) {
		return nil
	}
	return []Combo{{Cards: f.hand(), Weight: 1}}
}

func (f FixedHole) String() string { return f[0].String() + f[1].String() }

// RandomHole is an opponent holding any two unseen cards.
type RandomHole struct{}

func (RandomHole) Sample(rng *rand.Rand, dead poker.Hand) (poker.Hand, bool) {
	cards := poker.NewDeck(dead).Draw(rng, 2)
	if cards == nil {
		return 0, false
	}
	return poker.NewHand(cards...), true
}

func (RandomHole) Combos(dead poker.Hand) []Combo {
	live := poker.Remaining(dead).Cards()
	out := make([]Combo, 0, len(live)*(len(live)-1)/2)
	for i := range live {
		for j := i + 1; j < len(live); j++ {
			out = append(out, Combo{Cards: poker.NewHand(live[i], live[j]), Weight: 1})
		}
	}
	return out
}

func (RandomHole) String() string { return "random" }

// ParseHoleSource reads an opponent description: "" or "random" for any two
// cards, an exact pair such as "QhQd", or range notation such as "JJ+,AKs".
func ParseHoleSource(text string) (HoleSource, error) {
	text = strings.TrimSpace(text)
	switch strings.ToLower(text) {
	case "", "random", "any":
		return RandomHole{}, nil
	}
	if cards, err := poker.ParseCards(text); err == nil {
		if len(cards) != 2 {
			return nil, validationf("hole %q must have exactly 2 cards, got %d", text, len(cards))
		}
		return FixedHole{cards[0], cards[1]}, nil
	}
	return ParseRange(text)
}
