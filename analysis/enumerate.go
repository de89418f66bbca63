package analysis

import (
	"context"
	"fmt"

	"github.com/lox/pokerequity/poker"
)

// Enumerate computes exact probabilities by visiting every board completion
// and every disjoint opponent assignment. It refuses, without doing any
// work, when the number of assignments exceeds ceiling.
func Enumerate(ctx context.Context, s Scenario, ceiling uint64) (EquityResult, error) {
	t, err := prepare(s)
	if err != nil {
		return EquityResult{}, err
	}
	return enumerate(ctx, t, ceiling)
}

// enumerator accumulates outcomes. With range opponents every disjoint
// outer assignment carries the product of its combo weights; the totals are
// normalised once all assignments have been visited.
type enumerator struct {
	ctx context.Context
	t   *table

	counts tally
	// win, tie and lose accumulate weighted probabilities; mass is the total
	// weight of outer assignments that had at least one completion.
	win, tie, lose, mass float64
}

func enumerate(ctx context.Context, t *table, ceiling uint64) (EquityResult, error) {
	if n := t.shape().Combinations(); n > ceiling {
		return EquityResult{}, &InfeasibleError{Combinations: n, Ceiling: ceiling}
	}

	e := &enumerator{ctx: ctx, t: t}
	opps := make([]poker.Hand, 0, t.opponents())
	opps = append(opps, t.fixed...)
	if err := e.ranges(0, 0, opps, 1); err != nil {
		return EquityResult{}, err
	}
	if e.mass == 0 {
		return EquityResult{}, validationf("range opponents have no disjoint assignment")
	}

	win := e.win / e.mass
	return EquityResult{
		Win:     win,
		Tie:     e.tie / e.mass,
		Lose:    e.lose / e.mass,
		Wins:    e.counts.wins,
		Ties:    e.counts.ties,
		Losses:  e.counts.losses,
		Samples: e.counts.total(),
		Method:  MethodExact,
		CILow:   win,
		CIHigh:  win,
	}, nil
}

// ranges assigns range opponent i and recurses. assigned holds the cards
// taken by earlier range opponents, opps the hole pairs dealt so far and
// weight the product of the weights chosen so far.
func (e *enumerator) ranges(i int, assigned poker.Hand, opps []poker.Hand, weight float64) error {
	if i == len(e.t.ranges) {
		return e.inner(assigned, opps, weight)
	}
	for _, c := range e.t.ranges[i].live() {
		if c.Cards.Overlaps(assigned) {
			continue
		}
		if err := e.ranges(i+1, assigned|c.Cards, append(opps, c.Cards), weight*c.Weight); err != nil {
			return err
		}
	}
	return nil
}

// inner enumerates board completions and random opponents for one outer
// assignment and folds the uniform result into the weighted totals.
func (e *enumerator) inner(assigned poker.Hand, opps []poker.Hand, weight float64) error {
	t := e.t
	dead := t.dead | assigned
	live := poker.Remaining(dead).Cards()

	var local tally
	err := forEachSubset(live, t.need, func(extra poker.Hand) error {
		if err := e.ctx.Err(); err != nil {
			return err
		}
		board := t.board | extra
		hero, err := poker.EvaluateHand(t.hero | board)
		if err != nil {
			return fmt.Errorf("evaluate hero: %w", err)
		}
		return e.randoms(t.random, dead|extra, board, hero, opps, &local)
	})
	if err != nil {
		return err
	}

	n := local.total()
	if n == 0 {
		return nil
	}
	e.counts.add(local)
	e.win += weight * float64(local.wins) / float64(n)
	e.tie += weight * float64(local.ties) / float64(n)
	e.lose += weight * float64(local.losses) / float64(n)
	e.mass += weight
	return nil
}

// randoms deals the remaining random opponents one ordered pair at a time
// and scores the completed assignment.
func (e *enumerator) randoms(left int, dead, board poker.Hand, hero poker.HandRank, opps []poker.Hand, out *tally) error {
	if left == 0 {
		o, err := score(hero, board, opps)
		if err != nil {
			return err
		}
		out.add(o)
		return nil
	}
	live := poker.Remaining(dead).Cards()
	for i := range live {
		for j := i + 1; j < len(live); j++ {
			pair := poker.NewHand(live[i], live[j])
			if err := e.randoms(left-1, dead|pair, board, hero, append(opps, pair), out); err != nil {
				return err
			}
		}
	}
	return nil
}

// score applies the showdown rule: the hero wins only by beating every
// opponent, ties when equal to the best opponent, and loses otherwise.
func score(hero poker.HandRank, board poker.Hand, opps []poker.Hand) (tally, error) {
	var best poker.HandRank
	for _, opp := range opps {
		r, err := poker.EvaluateHand(opp | board)
		if err != nil {
			return tally{}, fmt.Errorf("evaluate opponent: %w", err)
		}
		best = max(best, r)
	}
	switch {
	case hero > best:
		return tally{wins: 1}, nil
	case hero == best:
		return tally{ties: 1}, nil
	default:
		return tally{losses: 1}, nil
	}
}

// forEachSubset calls fn with every k-card subset of cards.
func forEachSubset(cards []poker.Card, k int, fn func(poker.Hand) error) error {
	if k == 0 {
		return fn(0)
	}
	if k > len(cards) {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		var h poker.Hand
		for _, i := range idx {
			h.Add(cards[i])
		}
		if err := fn(h); err != nil {
			return err
		}

		i := k - 1
		for i >= 0 && idx[i] == len(cards)-k+i {
			i--
		}
		if i < 0 {
			return nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
