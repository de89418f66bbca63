package analysis

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/pokerequity/poker"
)

// Range represents a collection of hole-card combos with associated weights
// in (0, 1]. Each combo is stored as the two-card poker.Hand.
type Range struct {
	notation string
	hands    map[poker.Hand]float64
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{
		hands: make(map[poker.Hand]float64),
	}
}

// suitedness restricts the combos generated for an unpaired hand.
type suitedness uint8

const (
	anySuit suitedness = iota
	suitedOnly
	offsuitOnly
)

// handClass is one parsed hand token such as "AKs", "TT" or "76".
type handClass struct {
	hi, lo poker.Rank
	suits  suitedness
}

func (h handClass) pair() bool { return h.hi == h.lo }

// ParseRange creates a range from standard range notation.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "54s-76s", "KQo@50%".
// Duplicate combos merge by adding their weights, capped at 1.
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	r.notation = strings.TrimSpace(notation)

	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addRangePart(part); err != nil {
			return nil, fmt.Errorf("%w: range part %q: %w", ErrValidation, part, err)
		}
	}

	if len(r.hands) == 0 {
		return nil, validationf("range %q contains no combos", notation)
	}
	return r, nil
}

// MustParseRange parses a range and panics on error (for tests and tables).
func MustParseRange(notation string) *Range {
	r, err := ParseRange(notation)
	if err != nil {
		panic(err)
	}
	return r
}

// addRangePart adds a single range notation part to the range.
func (r *Range) addRangePart(part string) error {
	weight := 1.0
	if at := strings.IndexByte(part, '@'); at >= 0 {
		w, err := parseWeight(part[at+1:])
		if err != nil {
			return err
		}
		weight = w
		part = strings.TrimSpace(part[:at])
	}

	switch {
	case strings.HasSuffix(part, "+"):
		return r.addPlusRange(strings.TrimSuffix(part, "+"), weight)
	case strings.Contains(part, "-"):
		return r.addDashRange(part, weight)
	default:
		h, err := parseHandClass(part)
		if err != nil {
			return err
		}
		r.addClass(h, weight)
		return nil
	}
}

// parseWeight accepts "30%", "0.3" or "30" (values above 1 are percentages).
func parseWeight(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	if percent || v > 1 {
		v /= 100
	}
	if v <= 0 || v > 1 {
		return 0, fmt.Errorf("weight %q out of range (0, 100%%]", s)
	}
	return v, nil
}

// addPlusRange handles notations like "TT+" (all pairs TT and higher) and
// "ATs+" (kicker climbs up to one below the top card).
func (r *Range) addPlusRange(base string, weight float64) error {
	h, err := parseHandClass(base)
	if err != nil {
		return err
	}

	if h.pair() {
		for rank := h.lo; rank <= poker.Ace; rank++ {
			r.addClass(handClass{hi: rank, lo: rank}, weight)
		}
		return nil
	}

	for rank := h.lo; rank < h.hi; rank++ {
		r.addClass(handClass{hi: h.hi, lo: rank, suits: h.suits}, weight)
	}
	return nil
}

// addDashRange handles "22-66" (pairs), "A5s-A2s" (fixed top card) and
// "54s-76s" (connector run keeping the gap between the two cards).
func (r *Range) addDashRange(notation string, weight float64) error {
	parts := strings.Split(notation, "-")
	if len(parts) != 2 {
		return fmt.Errorf("invalid dash range format")
	}

	start, err := parseHandClass(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	end, err := parseHandClass(strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	suits := end.suits
	if suits == anySuit {
		suits = start.suits
	} else if start.suits != anySuit && start.suits != end.suits {
		return fmt.Errorf("mismatched suited/offsuit modifiers")
	}

	switch {
	case start.pair() && end.pair():
		lower, upper := min(start.hi, end.hi), max(start.hi, end.hi)
		for rank := lower; rank <= upper; rank++ {
			r.addClass(handClass{hi: rank, lo: rank}, weight)
		}
	case start.pair() || end.pair():
		return fmt.Errorf("cannot mix pairs and unpaired hands")
	case start.hi == end.hi:
		lower, upper := min(start.lo, end.lo), max(start.lo, end.lo)
		for rank := lower; rank <= upper; rank++ {
			r.addClass(handClass{hi: start.hi, lo: rank, suits: suits}, weight)
		}
	case start.hi-start.lo == end.hi-end.lo:
		gap := start.hi - start.lo
		lower, upper := min(start.lo, end.lo), max(start.lo, end.lo)
		for rank := lower; rank <= upper; rank++ {
			r.addClass(handClass{hi: rank + gap, lo: rank, suits: suits}, weight)
		}
	default:
		return fmt.Errorf("unsupported range format")
	}
	return nil
}

// parseHandClass parses "AK", "AKs", "T9o", "1010" style tokens. The two
// ranks may come in either order.
func parseHandClass(s string) (handClass, error) {
	first, n1, ok := parseRangeRank(s)
	if !ok {
		return handClass{}, fmt.Errorf("invalid rank in %q", s)
	}
	second, n2, ok := parseRangeRank(s[n1:])
	if !ok {
		return handClass{}, fmt.Errorf("invalid rank in %q", s)
	}

	h := handClass{hi: max(first, second), lo: min(first, second)}
	switch rest := s[n1+n2:]; strings.ToLower(rest) {
	case "":
	case "s":
		h.suits = suitedOnly
	case "o":
		h.suits = offsuitOnly
	default:
		return handClass{}, fmt.Errorf("invalid modifier %q", rest)
	}

	if h.pair() && h.suits != anySuit {
		return handClass{}, fmt.Errorf("pocket pairs cannot have suited/offsuit modifier")
	}
	return h, nil
}

// parseRangeRank reads one rank from the start of s. Both "T" and "10" are
// accepted for ten.
func parseRangeRank(s string) (poker.Rank, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	switch c := s[0]; c {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return poker.Rank(c - '2'), 1, true
	case '1':
		if len(s) > 1 && s[1] == '0' {
			return poker.Ten, 2, true
		}
	case 'T', 't':
		return poker.Ten, 1, true
	case 'J', 'j':
		return poker.Jack, 1, true
	case 'Q', 'q':
		return poker.Queen, 1, true
	case 'K', 'k':
		return poker.King, 1, true
	case 'A', 'a':
		return poker.Ace, 1, true
	}
	return 0, 0, false
}

// addClass adds every combo of a hand class: 6 for a pair, 4 suited,
// 12 offsuit.
func (r *Range) addClass(h handClass, weight float64) {
	for s1 := poker.Clubs; s1 <= poker.Spades; s1++ {
		for s2 := poker.Clubs; s2 <= poker.Spades; s2++ {
			switch {
			case h.pair() && s2 <= s1:
				continue
			case !h.pair() && h.suits == suitedOnly && s1 != s2:
				continue
			case !h.pair() && h.suits == offsuitOnly && s1 == s2:
				continue
			}
			r.add(poker.NewHand(poker.NewCard(h.hi, s1), poker.NewCard(h.lo, s2)), weight)
		}
	}
}

func (r *Range) add(hand poker.Hand, weight float64) {
	r.hands[hand] = min(1, r.hands[hand]+weight)
}

// Contains checks if a specific hand is in the range using string cards.
func (r *Range) Contains(card1, card2 string) bool {
	c1, err1 := poker.ParseCard(card1)
	c2, err2 := poker.ParseCard(card2)
	if err1 != nil || err2 != nil {
		return false
	}
	return r.ContainsCards(c1, c2)
}

// ContainsCards checks if hole cards are in the range.
func (r *Range) ContainsCards(c1, c2 poker.Card) bool {
	_, ok := r.hands[poker.NewHand(c1, c2)]
	return ok
}

// Size returns the number of combos in the range.
func (r *Range) Size() int {
	return len(r.hands)
}

// Hands returns all combos sorted by numeric value.
func (r *Range) Hands() []poker.Hand {
	hands := make([]poker.Hand, 0, len(r.hands))
	for hand := range r.hands {
		hands = append(hands, hand)
	}
	slices.Sort(hands)
	return hands
}

// Weight returns the weight of a combo, zero if absent.
func (r *Range) Weight(hand poker.Hand) float64 {
	return r.hands[hand]
}

// Combos returns the live combos, those not blocked by dead cards, in a
// stable order.
func (r *Range) Combos(dead poker.Hand) []Combo {
	out := make([]Combo, 0, len(r.hands))
	for _, hand := range r.Hands() {
		if !hand.Overlaps(dead) {
			out = append(out, Combo{Cards: hand, Weight: r.hands[hand]})
		}
	}
	return out
}

// Sample draws a live combo with probability proportional to its weight.
// Blocked combos are removed and the remaining weights renormalised.
func (r *Range) Sample(rng *rand.Rand, dead poker.Hand) (poker.Hand, bool) {
	s := newComboSampler(r.Combos(dead))
	if s == nil {
		return 0, false
	}
	return s.pick(rng), true
}

// String returns the notation the range was parsed from.
func (r *Range) String() string {
	if r.notation == "" {
		return fmt.Sprintf("range(%d combos)", len(r.hands))
	}
	return r.notation
}

// comboSampler draws from a fixed list of combos by cumulative weight.
type comboSampler struct {
	combos []Combo
	cum    []float64
}

func newComboSampler(combos []Combo) *comboSampler {
	s := &comboSampler{}
	total := 0.0
	for _, c := range combos {
		if c.Weight <= 0 {
			continue
		}
		total += c.Weight
		s.combos = append(s.combos, c)
		s.cum = append(s.cum, total)
	}
	if len(s.combos) == 0 {
		return nil
	}
	return s
}

func (s *comboSampler) total() float64 { return s.cum[len(s.cum)-1] }

func (s *comboSampler) pick(rng *rand.Rand) poker.Hand {
	u := rng.Float64() * s.total()
	i := sort.Search(len(s.cum), func(i int) bool { return s.cum[i] > u })
	if i == len(s.combos) {
		i--
	}
	return s.combos[i].Cards
}
