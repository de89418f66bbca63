package ev

import (
	"testing"

	"github.com/lox/pokerequity/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equity(win, tie float64) analysis.EquityResult {
	return analysis.EquityResult{Win: win, Tie: tie, Lose: 1 - win - tie, Samples: 1000}
}

func TestAnalyzeBreakEven(t *testing.T) {
	t.Parallel()
	res, err := Analyze(equity(1.0/3, 0), Context{Pot: 100, ToCall: 50})
	require.NoError(t, err)

	assert.InDelta(t, 1.0/3, res.PotOdds, 1e-12)
	assert.InDelta(t, 0, res.Surplus, 1e-12)
	assert.InDelta(t, 2, res.RiskReward, 1e-12)
	callEV, ok := res.EV(Call)
	require.True(t, ok)
	assert.InDelta(t, 0, callEV, 1e-9)
	assert.Equal(t, Low, res.Confidence)
}

func TestAnalyzeRecommendation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		eq          analysis.EquityResult
		ctx         Context
		recommended Action
		ev          float64
		actions     []Action
		confidence  Confidence
	}{
		{
			name:        "profitable call",
			eq:          equity(0.5, 0),
			ctx:         Context{Pot: 100, ToCall: 50},
			recommended: Call,
			ev:          25,
			actions:     []Action{Fold, Call},
			confidence:  High,
		},
		{
			name:        "clear fold",
			eq:          equity(0.2, 0),
			ctx:         Context{Pot: 100, ToCall: 50},
			recommended: Fold,
			ev:          0,
			actions:     []Action{Fold, Call},
			confidence:  VeryLow,
		},
		{
			name:        "zero ev call folds",
			eq:          equity(0.5, 0),
			ctx:         Context{Pot: 100, ToCall: 100},
			recommended: Fold,
			ev:          0,
			actions:     []Action{Fold, Call},
			confidence:  Low,
		},
		{
			name:        "raise with fold equity",
			eq:          equity(0.6, 0),
			ctx:         Context{Pot: 100, ToCall: 20, RaiseSize: 60, FoldEquity: 0.5},
			recommended: Raise,
			ev:          86,
			actions:     []Action{Fold, Call, Raise},
			confidence:  High,
		},
		{
			name:        "all-in uses raise fold equity by default",
			eq:          equity(0.5, 0),
			ctx:         Context{Pot: 100, ToCall: 20, Stack: 200, FoldEquity: 0.3},
			recommended: AllIn,
			ev:          65,
			actions:     []Action{Fold, Call, AllIn},
			confidence:  High,
		},
		{
			name:        "tie splits the pot",
			eq:          equity(0, 1),
			ctx:         Context{Pot: 100},
			recommended: Call,
			ev:          50,
			actions:     []Action{Fold, Call},
			confidence:  High,
		},
		{
			name:        "implied odds rescue a draw",
			eq:          equity(0.25, 0),
			ctx:         Context{Pot: 100, ToCall: 50, ImpliedOdds: 3},
			recommended: Call,
			ev:          12.5,
			actions:     []Action{Fold, Call},
			confidence:  VeryLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := Analyze(tt.eq, tt.ctx)
			require.NoError(t, err)

			assert.Equal(t, tt.recommended, res.Recommended)
			got, ok := res.EV(tt.recommended)
			require.True(t, ok)
			assert.InDelta(t, tt.ev, got, 1e-9)
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.NotEmpty(t, res.Reason)

			var actions []Action
			for _, a := range res.Actions {
				actions = append(actions, a.Action)
			}
			assert.Equal(t, tt.actions, actions)
		})
	}
}

func TestAnalyzeCallSignFollowsSurplus(t *testing.T) {
	t.Parallel()
	for _, win := range []float64{0.1, 0.25, 0.3, 0.4, 0.55, 0.9} {
		res, err := Analyze(equity(win, 0), Context{Pot: 120, ToCall: 40})
		require.NoError(t, err)
		callEV, _ := res.EV(Call)
		assert.Equal(t, res.Surplus > 0, callEV > 0, "win=%v", win)
	}
}

func TestAnalyzeRaiseCappedByStack(t *testing.T) {
	t.Parallel()
	res, err := Analyze(equity(0.5, 0), Context{Pot: 100, ToCall: 10, RaiseSize: 300, Stack: 150, AllInFoldEquity: 0.4})
	require.NoError(t, err)

	require.Len(t, res.Actions, 4)
	assert.Equal(t, 150.0, res.Actions[2].Amount)
	assert.Equal(t, 150.0, res.Actions[3].Amount)
	// Raise uses no fold equity; all-in uses its own.
	assert.InDelta(t, 50, res.Actions[2].EV, 1e-9)
	assert.InDelta(t, 0.4*100+0.6*50, res.Actions[3].EV, 1e-9)
}

func TestKelly(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    float64
		ctx  Context
		want float64
	}{
		{"even money coin flip edge", 0.5, Context{Pot: 100, ToCall: 50}, 0.25},
		{"negative edge clips to zero", 0.2, Context{Pot: 100, ToCall: 50}, 0},
		{"nothing to call", 0.7, Context{Pot: 100}, 0.7},
		{"certain win", 1, Context{Pot: 100, ToCall: 50}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, kelly(tt.p, tt.ctx), 1e-12)
		})
	}
}

func TestConfidenceThresholds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		surplus float64
		want    Confidence
	}{
		{0.05, High},
		{0.02, High},
		{0.01, Medium},
		{0, Low},
		{-0.01, Low},
		{-0.02, VeryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceFor(tt.surplus), "surplus=%v", tt.surplus)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		eq   analysis.EquityResult
		ctx  Context
	}{
		{"negative pot", equity(0.5, 0), Context{Pot: -1, ToCall: 10}},
		{"negative stack", equity(0.5, 0), Context{Pot: 10, Stack: -5}},
		{"fold equity above one", equity(0.5, 0), Context{Pot: 10, FoldEquity: 1.5}},
		{"all-in fold equity negative", equity(0.5, 0), Context{Pot: 10, AllInFoldEquity: -0.1}},
		{"implied odds below one", equity(0.5, 0), Context{Pot: 10, ImpliedOdds: 0.5}},
		{"empty pot and call", equity(0.5, 0), Context{}},
		{"no samples", analysis.EquityResult{Win: 0.5}, Context{Pot: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.eq, tt.ctx)
			require.ErrorIs(t, err, ErrInvalidContext)
			assert.ErrorIs(t, err, analysis.ErrValidation)
			assert.Equal(t, "validation", analysis.ErrorKind(err))
		})
	}
}
