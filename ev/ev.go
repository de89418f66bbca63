// Package ev turns an equity estimate and a betting situation into pot odds,
// per-action expected values and a recommended action.
package ev

import (
	"fmt"
	"math"

	"github.com/lox/pokerequity/analysis"
)

// ErrInvalidContext is wrapped by every betting context validation error.
// It also matches analysis.ErrValidation.
var ErrInvalidContext = fmt.Errorf("%w: betting context", analysis.ErrValidation)

// Action is a betting decision.
type Action string

const (
	Fold  Action = "fold"
	Call  Action = "call"
	Raise Action = "raise"
	AllIn Action = "all-in"
)

// Confidence labels how clear-cut a decision is.
type Confidence string

const (
	High    Confidence = "High"
	Medium  Confidence = "Medium"
	Low     Confidence = "Low"
	VeryLow Confidence = "Very Low"
)

// Context is the betting situation facing the hero. Amounts share one unit.
type Context struct {
	Pot    float64 `json:"pot"`
	ToCall float64 `json:"to_call"`
	// Stack is the hero's remaining stack; zero means unknown and disables
	// the all-in option.
	Stack float64 `json:"stack,omitempty"`
	// RaiseSize is the raise amount; zero disables the raise option.
	RaiseSize float64 `json:"raise_size,omitempty"`
	// FoldEquity is the probability the opponent folds to a raise.
	FoldEquity float64 `json:"fold_equity,omitempty"`
	// AllInFoldEquity is the fold probability facing an all-in. Zero uses
	// FoldEquity.
	AllInFoldEquity float64 `json:"all_in_fold_equity,omitempty"`
	// ImpliedOdds multiplies the future value of a win. Zero or one means
	// no implied odds.
	ImpliedOdds float64 `json:"implied_odds,omitempty"`
}

// Validate rejects negative amounts and out-of-range probabilities.
func (c Context) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"pot", c.Pot}, {"to_call", c.ToCall}, {"stack", c.Stack}, {"raise_size", c.RaiseSize},
	} {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a non-negative amount, got %g", ErrInvalidContext, f.name, f.value)
		}
	}
	if c.FoldEquity < 0 || c.FoldEquity > 1 || math.IsNaN(c.FoldEquity) {
		return fmt.Errorf("%w: fold equity must be in [0,1], got %g", ErrInvalidContext, c.FoldEquity)
	}
	if c.AllInFoldEquity < 0 || c.AllInFoldEquity > 1 || math.IsNaN(c.AllInFoldEquity) {
		return fmt.Errorf("%w: all-in fold equity must be in [0,1], got %g", ErrInvalidContext, c.AllInFoldEquity)
	}
	if c.ImpliedOdds != 0 && c.ImpliedOdds < 1 || math.IsNaN(c.ImpliedOdds) {
		return fmt.Errorf("%w: implied odds multiplier must be at least 1, got %g", ErrInvalidContext, c.ImpliedOdds)
	}
	if c.Pot == 0 && c.ToCall == 0 {
		return fmt.Errorf("%w: pot and amount to call are both zero", ErrInvalidContext)
	}
	return nil
}

// ActionEV is the expected value of one available action.
type ActionEV struct {
	Action Action  `json:"action"`
	Amount float64 `json:"amount"`
	EV     float64 `json:"ev"`
}

// Result is the analysis of one equity estimate in one betting context.
type Result struct {
	Equity         float64 `json:"equity"`
	PotOdds        float64 `json:"pot_odds"`
	RequiredEquity float64 `json:"required_equity"`
	Surplus        float64 `json:"surplus"`
	// RiskReward is the pot-to-call ratio, zero when there is nothing to call.
	RiskReward float64 `json:"risk_reward"`
	Kelly      float64 `json:"kelly"`

	// Actions lists the available actions in the order fold, call, raise,
	// all-in.
	Actions     []ActionEV `json:"actions"`
	Recommended Action     `json:"recommended"`
	Confidence  Confidence `json:"confidence"`
	Reason      string     `json:"reason"`
}

// EV returns the expected value of an action and whether it was available.
func (r Result) EV(a Action) (float64, bool) {
	for _, x := range r.Actions {
		if x.Action == a {
			return x.EV, true
		}
	}
	return 0, false
}

// Analyze computes pot odds, per-action EV and a recommendation.
func Analyze(eq analysis.EquityResult, c Context) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if eq.Samples == 0 {
		return Result{}, fmt.Errorf("%w: equity result has no samples", ErrInvalidContext)
	}

	res := Result{Equity: eq.Equity()}
	if c.ToCall > 0 {
		res.PotOdds = c.ToCall / (c.Pot + c.ToCall)
		res.RiskReward = c.Pot / c.ToCall
	}
	res.RequiredEquity = res.PotOdds
	res.Surplus = res.Equity - res.RequiredEquity
	res.Kelly = kelly(eq.Win, c)

	implied := max(c.ImpliedOdds, 1)
	res.Actions = append(res.Actions,
		ActionEV{Action: Fold},
		ActionEV{Action: Call, Amount: c.ToCall, EV: callEV(eq, c.Pot, c.ToCall, implied)},
	)
	if c.RaiseSize > 0 {
		r := c.RaiseSize
		if c.Stack > 0 {
			r = min(r, c.Stack)
		}
		res.Actions = append(res.Actions, ActionEV{Action: Raise, Amount: r, EV: raiseEV(eq, c.Pot, r, c.FoldEquity, implied)})
	}
	if c.Stack > c.ToCall {
		fe := c.AllInFoldEquity
		if fe == 0 {
			fe = c.FoldEquity
		}
		res.Actions = append(res.Actions, ActionEV{Action: AllIn, Amount: c.Stack, EV: raiseEV(eq, c.Pot, c.Stack, fe, implied)})
	}

	best := res.Actions[0]
	for _, a := range res.Actions[1:] {
		if a.EV > best.EV {
			best = a
		}
	}
	res.Recommended = best.Action
	res.Confidence = confidenceFor(res.Surplus)
	res.Reason = reason(res, best)
	return res, nil
}

// callEV is win·(pot+call) + tie·(pot+call)/2 − call, plus the implied value
// win·call·(m−1).
func callEV(eq analysis.EquityResult, pot, toCall, implied float64) float64 {
	final := pot + toCall
	v := eq.Win*final + eq.Tie*final/2 - toCall
	if implied > 1 {
		v += eq.Win * toCall * (implied - 1)
	}
	return v
}

// raiseEV is fe·pot + (1−fe)·EV(called), where a called raise of r builds a
// pot of pot+2r.
func raiseEV(eq analysis.EquityResult, pot, r, fe, implied float64) float64 {
	final := pot + 2*r
	called := eq.Win*final + eq.Tie*final/2 - r
	if implied > 1 {
		called += eq.Win * r * (implied - 1)
	}
	return fe*pot + (1-fe)*called
}

// kelly is (b·p − q)/b with b the pot-to-call ratio, clipped to [0,1].
func kelly(p float64, c Context) float64 {
	if c.ToCall == 0 {
		return p
	}
	b := c.Pot / c.ToCall
	if b == 0 {
		return 0
	}
	f := (b*p - (1 - p)) / b
	return math.Max(0, math.Min(1, f))
}

func confidenceFor(surplus float64) Confidence {
	switch {
	case surplus >= 0.02:
		return High
	case surplus > 0:
		return Medium
	case surplus >= -0.01:
		return Low
	default:
		return VeryLow
	}
}

func reason(r Result, best ActionEV) string {
	eq, req := r.Equity*100, r.RequiredEquity*100
	switch best.Action {
	case Fold:
		return fmt.Sprintf("Fold: equity %.1f%% is below the %.1f%% required (deficit %.1f%%)", eq, req, -r.Surplus*100)
	case Call:
		return fmt.Sprintf("Call: equity %.1f%% against %.1f%% required (surplus %.1f%%), EV %+.2f", eq, req, r.Surplus*100, best.EV)
	case Raise:
		return fmt.Sprintf("Raise %.2f: EV %+.2f beats calling with equity %.1f%% against %.1f%% required", best.Amount, best.EV, eq, req)
	default:
		return fmt.Sprintf("All-in %.2f: EV %+.2f is the best available with equity %.1f%%", best.Amount, best.EV, eq)
	}
}
