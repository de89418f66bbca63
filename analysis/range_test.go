package analysis

import (
	"testing"

	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		wantSize int
		wantErr  bool
	}{
		{name: "pocket aces", notation: "AA", wantSize: 6},
		{name: "ace king suited", notation: "AKs", wantSize: 4},
		{name: "ace king offsuit", notation: "AKo", wantSize: 12},
		{name: "ace king any", notation: "AK", wantSize: 16},
		{name: "ranks in either order", notation: "KAs", wantSize: 4},
		{name: "lower case", notation: "aks", wantSize: 4},
		{name: "ten as 10", notation: "1010", wantSize: 6},
		{name: "multiple hands", notation: "AA,KK,AKs", wantSize: 16},
		{name: "pocket pairs range", notation: "TT+", wantSize: 30},
		{name: "suited range plus", notation: "ATs+", wantSize: 16},
		{name: "offsuit range plus", notation: "KJo+", wantSize: 24},
		{name: "dash range pairs", notation: "22-55", wantSize: 24},
		{name: "dash range suited", notation: "A5s-A2s", wantSize: 16},
		{name: "connector run", notation: "54s-76s", wantSize: 12},
		{name: "one gapper run", notation: "T8s-64s", wantSize: 20},
		{name: "weighted part", notation: "AA@50%", wantSize: 6},
		{name: "complex range", notation: "TT+,AJs+,KQs", wantSize: 46},
		{name: "overlapping parts merge", notation: "AK,AKs", wantSize: 16},
		{name: "spaces around parts", notation: " JJ+ , AKs ", wantSize: 28},
		{name: "invalid notation", notation: "XX", wantErr: true},
		{name: "invalid modifier", notation: "AKx", wantErr: true},
		{name: "pocket pair with modifier", notation: "AAs", wantErr: true},
		{name: "zero weight", notation: "AA@0%", wantErr: true},
		{name: "weight above one", notation: "AA@150%", wantErr: true},
		{name: "bad weight", notation: "AA@lots", wantErr: true},
		{name: "mixed pair dash", notation: "22-A5s", wantErr: true},
		{name: "irregular dash", notation: "A5s-K2s", wantErr: true},
		{name: "empty", notation: " , ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.notation)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, r.Size())
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := MustParseRange("AA,KK,AKs,54s-76s")

	tests := []struct {
		card1 string
		card2 string
		want  bool
	}{
		{"Ah", "As", true},  // AA
		{"Kh", "Kd", true},  // KK
		{"Ah", "Kh", true},  // AKs
		{"6d", "5d", true},  // 65s from the connector run
		{"Ah", "Kd", false}, // AKo not in range
		{"Qh", "Qd", false}, // QQ not in range
		{"8c", "7c", false}, // beyond the run
	}

	for _, tt := range tests {
		if got := r.Contains(tt.card1, tt.card2); got != tt.want {
			t.Errorf("Contains(%s,%s) = %v, want %v", tt.card1, tt.card2, got, tt.want)
		}
	}
}

func TestRangeWeights(t *testing.T) {
	r := MustParseRange("AA@30%, KK@0.5, QQ@40, AA@90%")

	aa := poker.NewHand(poker.MustParseCards("AsAh")...)
	kk := poker.NewHand(poker.MustParseCards("KsKh")...)
	qq := poker.NewHand(poker.MustParseCards("QsQh")...)

	assert.InDelta(t, 1.0, r.Weight(aa), 1e-12, "merged weights are capped at 1")
	assert.InDelta(t, 0.5, r.Weight(kk), 1e-12)
	assert.InDelta(t, 0.4, r.Weight(qq), 1e-12)
	assert.Zero(t, r.Weight(poker.NewHand(poker.MustParseCards("JsJh")...)))
}

func TestRangeHands(t *testing.T) {
	hands := MustParseRange("AA").Hands()
	require.Len(t, hands, 6)
	for _, hand := range hands {
		cards := hand.Cards()
		require.Len(t, cards, 2)
		assert.Equal(t, poker.Ace, cards[0].Rank())
		assert.Equal(t, poker.Ace, cards[1].Rank())
	}
}

func TestRangeCombosRemoveBlockers(t *testing.T) {
	r := MustParseRange("AA,AKs")
	dead := poker.NewHand(poker.MustParseCards("As")...)

	combos := r.Combos(dead)
	// AA loses the 3 combos with As, AKs loses AsKs.
	assert.Len(t, combos, 3+3)
	for _, c := range combos {
		assert.False(t, c.Cards.Overlaps(dead))
	}
}

func TestRangeSampleRespectsWeightsAndBlockers(t *testing.T) {
	r := MustParseRange("AA@25%,KK")
	dead := poker.NewHand(poker.MustParseCards("AsAh")...)
	rng := randutil.New(7)

	aces := 0
	const n = 20000
	for range n {
		h, ok := r.Sample(rng, dead)
		require.True(t, ok)
		require.False(t, h.Overlaps(dead))
		if h.Cards()[0].Rank() == poker.Ace {
			aces++
		}
	}
	// One live AA combo at 0.25 against six KK combos at 1.
	assert.InDelta(t, 0.25/6.25, float64(aces)/n, 0.01)

	_, ok := MustParseRange("AA").Sample(rng, poker.NewHand(poker.MustParseCards("AsAhAd")...))
	assert.False(t, ok)
}

func TestParseHoleSource(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "random"},
		{"Random", "random"},
		{"QhQd", "QhQd"},
		{"10s 9s", "10s9s"},
		{"JJ+,AKs", "JJ+,AKs"},
	}
	for _, tt := range tests {
		src, err := ParseHoleSource(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, src.String())
	}

	_, err := ParseHoleSource("QhQdQc")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseHoleSource("ZZ")
	assert.ErrorIs(t, err, ErrValidation)
}
