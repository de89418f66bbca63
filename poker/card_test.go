package poker

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	assert.Equal(t, Ace, aceSpades.Rank())
	assert.Equal(t, Spades, aceSpades.Suit())
	assert.Equal(t, "As", aceSpades.String())
	assert.Equal(t, "A♠", aceSpades.Pretty())

	tenHearts := NewCard(Ten, Hearts)
	assert.Equal(t, "10h", tenHearts.String())

	twoClubs := NewCard(Two, Clubs)
	assert.Equal(t, "2c", twoClubs.String())
	assert.Equal(t, 0, twoClubs.Index())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "king of diamonds", input: "Kd", wantCard: NewCard(King, Diamonds)},
		{name: "ten uses two digits", input: "10c", wantCard: NewCard(Ten, Clubs)},
		{name: "upper case suit", input: "10H", wantCard: NewCard(Ten, Hearts)},
		{name: "lower case rank", input: "qS", wantCard: NewCard(Queen, Spades)},
		{name: "nine of spades", input: "9s", wantCard: NewCard(Nine, Spades)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "T is not a rank token", input: "Tc", wantErr: true},
		{name: "leading zero", input: "09s", wantErr: true},
		{name: "one without zero", input: "1s", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
		{name: "separator inside card", input: "A s", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCard), "error should wrap ErrInvalidCard: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCard, card)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "concatenated", input: "AsKh10d", want: "As Kh 10d"},
		{name: "spaces and commas", input: "As, Kh 10d", want: "As Kh 10d"},
		{name: "empty", input: "", want: ""},
		{name: "mixed case", input: "aSkH", want: "As Kh"},
		{name: "odd trailing char", input: "AsK", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cards, err := ParseCards(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, FormatCards(cards, " "))
		})
	}
}

func TestAll52CardsRoundTrip(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(rank, suit)
			require.True(t, card.Valid())
			str := card.String()
			assert.False(t, seen[str], "duplicate card string %s", str)
			seen[str] = true

			parsed, err := ParseCard(str)
			require.NoError(t, err)
			assert.Equal(t, card, parsed)
		}
	}
	assert.Len(t, seen, NumCards)
}

func TestHandSetOperations(t *testing.T) {
	t.Parallel()
	as, kh := MustParseCard("As"), MustParseCard("Kh")
	h := NewHand(as)
	h.Add(kh)
	assert.Equal(t, 2, h.Count())
	assert.True(t, h.Has(as))
	assert.True(t, h.Overlaps(NewHand(kh)))

	h.Remove(as)
	assert.False(t, h.Has(as))
	assert.Equal(t, []Card{kh}, h.Cards())
}

func TestCheckDistinct(t *testing.T) {
	t.Parallel()
	hero := MustParseCards("AsAh")
	board := MustParseCards("2c7d9h")

	union, err := CheckDistinct(hero, board)
	require.NoError(t, err)
	assert.Equal(t, 5, union.Count())

	_, err = CheckDistinct(MustParseCards("AsAs"))
	require.ErrorIs(t, err, ErrDuplicateCard)

	_, err = CheckDistinct(hero, MustParseCards("Ah2c"))
	require.ErrorIs(t, err, ErrDuplicateCard)
	assert.Contains(t, err.Error(), "Ah")

	_, err = CheckDistinct([]Card{0})
	require.ErrorIs(t, err, ErrInvalidCard)
}

func TestDeck(t *testing.T) {
	t.Parallel()
	committed := NewHand(MustParseCards("AsAhKd")...)
	d := NewDeck(committed)
	assert.Equal(t, 49, d.Len())
	for _, c := range d.Cards() {
		assert.False(t, committed.Has(c))
	}

	rng := rand.New(rand.NewPCG(3, 4))
	drawn := NewHand(d.Draw(rng, 5)...)
	assert.Equal(t, 5, drawn.Count())
	assert.False(t, drawn.Overlaps(committed))
	assert.Equal(t, 44, d.Len())
	assert.False(t, drawn.Overlaps(NewHand(d.Cards()...)))
	assert.Nil(t, d.Draw(rng, 45))

	d.Reset(drawn)
	assert.Equal(t, 47, d.Len())
	for _, c := range d.Cards() {
		assert.False(t, drawn.Has(c))
	}
}

func TestDeckDrawIsUniform(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(5, 6))
	d := NewDeck(NewHand(MustParseCards("AsAh")...))
	counts := make(map[Card]int)
	const rounds = 50_000
	for range rounds {
		d.Reset(NewHand(MustParseCards("AsAh")...))
		for _, c := range d.Draw(rng, 2) {
			counts[c]++
		}
	}
	require.Len(t, counts, 50)
	want := float64(2*rounds) / 50
	for c, n := range counts {
		assert.InDelta(t, want, float64(n), want*0.1, "card %s", c)
	}
}
