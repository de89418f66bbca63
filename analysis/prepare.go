package analysis

import (
	"fmt"
	"math/bits"
	"math/rand/v2"

	"github.com/lox/pokerequity/poker"
)

// liveRange is a weighted source reduced to the combos not blocked by the
// hero, board or known opponents. Sample draws from those combos by weight
// and fails when the pick collides with a card dealt earlier in the trial.
type liveRange struct {
	HoleSource
	sampler *comboSampler
}

func (l liveRange) Sample(rng *rand.Rand, dead poker.Hand) (poker.Hand, bool) {
	combo := l.sampler.pick(rng)
	return combo, !combo.Overlaps(dead)
}

// live returns the combos a seat can hold, all with positive weight.
func (l liveRange) live() []Combo { return l.sampler.combos }

// table is a validated scenario reduced to bitsets.
type table struct {
	hero   poker.Hand
	board  poker.Hand
	fixed  []poker.Hand
	random int
	ranges []liveRange
	// dead holds the hero, board and known opponent cards.
	dead poker.Hand
	// need is the number of community cards still to come.
	need int
}

func (t *table) opponents() int { return len(t.fixed) + len(t.ranges) + t.random }

// remaining counts the cards not committed to hero, board or known
// opponents.
func (t *table) remaining() int { return poker.NumCards - t.dead.Count() }

// Validate checks a scenario without computing anything: card counts,
// duplicates, range liveness and deck size.
func Validate(s Scenario) error {
	_, err := prepare(s)
	return err
}

// prepare validates a scenario. Every failure wraps ErrValidation.
func prepare(s Scenario) (*table, error) {
	if len(s.Hero) != 2 {
		return nil, validationf("hero must hold exactly 2 cards, got %d", len(s.Hero))
	}
	switch len(s.Board) {
	case 0, 3, 4, 5:
	default:
		return nil, validationf("board must have 0, 3, 4 or 5 cards, got %d", len(s.Board))
	}
	if len(s.Opponents) == 0 {
		return nil, validationf("at least one opponent is required")
	}

	t := &table{
		hero:  poker.NewHand(s.Hero...),
		board: poker.NewHand(s.Board...),
		need:  5 - len(s.Board),
	}

	groups := [][]poker.Card{s.Hero, s.Board}
	for i, opp := range s.Opponents {
		switch o := opp.(type) {
		case nil:
			return nil, validationf("opponent %d has no hole source", i+1)
		case FixedHole:
			groups = append(groups, o[:])
			t.fixed = append(t.fixed, o.hand())
		case RandomHole, *RandomHole:
			t.random++
		}
	}

	dead, err := poker.CheckDistinct(groups...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	t.dead = dead

	for i, opp := range s.Opponents {
		switch opp.(type) {
		case FixedHole, RandomHole, *RandomHole:
			continue
		}
		live := opp.Combos(dead)
		sampler := newComboSampler(live)
		if sampler == nil {
			return nil, validationf("opponent %d (%s) has no combo left given the known cards", i+1, opp)
		}
		t.ranges = append(t.ranges, liveRange{HoleSource: opp, sampler: sampler})
	}

	if needed := t.need + 2*(t.random+len(t.ranges)); needed > t.remaining() {
		return nil, validationf("not enough cards: %d needed, %d left", needed, t.remaining())
	}
	return t, nil
}

// shape describes the table to the method selector.
func (t *table) shape() Shape {
	combos := make([]int, len(t.ranges))
	for i, r := range t.ranges {
		combos[i] = len(r.live())
	}
	return Shape{
		UnknownBoard:    t.need,
		RandomOpponents: t.random,
		RangeCombos:     combos,
		Remaining:       t.remaining(),
	}
}

// binomial returns C(n, k), saturating at the maximum uint64.
func binomial(n, k int) uint64 {
	if k < 0 || n < k {
		return 0
	}
	k = min(k, n-k)
	c := uint64(1)
	for i := 1; i <= k; i++ {
		// c * (n-k+i) / i stays integral at every step.
		hi, lo := bits.Mul64(c, uint64(n-k+i))
		if hi != 0 {
			return ^uint64(0)
		}
		c = lo / uint64(i)
	}
	return c
}

// mulSat multiplies with saturation.
func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}
