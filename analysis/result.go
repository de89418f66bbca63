package analysis

import (
	"fmt"
	"time"
)

// EquityResult is the outcome of one computation. Win, Tie and Lose are
// probabilities that sum to 1; the counts are raw trial or assignment
// tallies. For exact results the confidence radius is zero and the interval
// collapses to the win probability.
type EquityResult struct {
	Win  float64 `json:"win"`
	Tie  float64 `json:"tie"`
	Lose float64 `json:"lose"`

	Wins    int64 `json:"wins"`
	Ties    int64 `json:"ties"`
	Losses  int64 `json:"losses"`
	Samples int64 `json:"samples"`

	Method           Method  `json:"method"`
	ConfidenceRadius float64 `json:"confidence_radius"`
	CILow            float64 `json:"ci_low"`
	CIHigh           float64 `json:"ci_high"`
	StoppedEarly     bool    `json:"stopped_early"`
	Seed             int64   `json:"seed,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Equity returns the pot share: Win + Tie/2.
func (r EquityResult) Equity() float64 {
	return r.Win + r.Tie/2
}

// Exact reports whether the result came from full enumeration.
func (r EquityResult) Exact() bool {
	return r.Method == MethodExact
}

func (r EquityResult) String() string {
	return fmt.Sprintf("win=%.4f tie=%.4f lose=%.4f samples=%d method=%s ±%.4f",
		r.Win, r.Tie, r.Lose, r.Samples, r.Method, r.ConfidenceRadius)
}

// tally counts trial outcomes. Tallies from different workers combine by
// summation.
type tally struct {
	wins, ties, losses int64
}

func (t *tally) add(o tally) {
	t.wins += o.wins
	t.ties += o.ties
	t.losses += o.losses
}

func (t tally) total() int64 { return t.wins + t.ties + t.losses }

// result converts counts into probabilities with a Wilson interval on the
// win probability.
func (t tally) result(method Method, z float64) EquityResult {
	n := t.total()
	res := EquityResult{
		Wins:    t.wins,
		Ties:    t.ties,
		Losses:  t.losses,
		Samples: n,
		Method:  method,
	}
	if n == 0 {
		return res
	}
	res.Win = float64(t.wins) / float64(n)
	res.Tie = float64(t.ties) / float64(n)
	res.Lose = float64(t.losses) / float64(n)
	res.CILow, res.CIHigh, res.ConfidenceRadius = Wilson(t.wins, n, z)
	return res
}
