package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// HandCategory enumerates the categories of poker hands ordered from weakest to strongest.
type HandCategory uint8

const (
	HighCard HandCategory = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (c HandCategory) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// keyLen is the number of tie-break ranks carried by each category.
var keyLen = [...]int{
	HighCard:      5,
	Pair:          4,
	TwoPair:       3,
	ThreeOfAKind:  3,
	Straight:      1,
	Flush:         5,
	FullHouse:     2,
	FourOfAKind:   2,
	StraightFlush: 1,
	RoyalFlush:    1,
}

// HandRank is the strength of a five-card hand. The category lives in the
// bits above categoryShift and the tie-break ranks are packed below it as
// 4-bit nibbles, most significant first. Larger values are stronger hands, so
// two ranks compare with plain integer comparison.
type HandRank uint32

const (
	categoryShift = 20
	nibbleBits    = 4
)

func newHandRank(cat HandCategory, key []Rank) HandRank {
	r := HandRank(cat) << categoryShift
	shift := categoryShift - nibbleBits
	for _, k := range key {
		r |= HandRank(k) << shift
		shift -= nibbleBits
	}
	return r
}

// Category returns the hand category.
func (r HandRank) Category() HandCategory {
	return HandCategory(r >> categoryShift)
}

// Key returns the tie-break ranks in order of significance.
func (r HandRank) Key() []Rank {
	cat := r.Category()
	if int(cat) >= len(keyLen) {
		return nil
	}
	key := make([]Rank, keyLen[cat])
	shift := categoryShift - nibbleBits
	for i := range key {
		key[i] = Rank(r>>shift) & 0xF
		shift -= nibbleBits
	}
	return key
}

// Compare returns 1 if r is stronger, -1 if other is stronger, 0 for a tie.
func (r HandRank) Compare(other HandRank) int {
	switch {
	case r > other:
		return 1
	case r < other:
		return -1
	default:
		return 0
	}
}

// String returns the category name.
func (r HandRank) String() string {
	return r.Category().String()
}

// Describe returns the category with its tie-break ranks, e.g. "Two Pair [K 7 A]".
func (r HandRank) Describe() string {
	key := r.Key()
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s [%s]", r.Category(), strings.Join(parts, " "))
}

// subsets holds the index combinations for choosing 5 of n cards, n = 5..7.
var subsets = [8][][5]uint8{
	5: combinations(5),
	6: combinations(6),
	7: combinations(7),
}

func combinations(n uint8) [][5]uint8 {
	var out [][5]uint8
	for a := uint8(0); a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						out = append(out, [5]uint8{a, b, c, d, e})
					}
				}
			}
		}
	}
	return out
}

// Evaluate returns the best five-card HandRank that can be made from 5, 6 or
// 7 distinct cards. Every five-card subset is ranked and the maximum kept.
func Evaluate(cards ...Card) (HandRank, error) {
	switch n := len(cards); {
	case n < 5:
		return 0, fmt.Errorf("%w: got %d", ErrNotEnoughCards, n)
	case n > 7:
		return 0, fmt.Errorf("%w: got %d", ErrTooManyCards, n)
	}
	if _, err := CheckDistinct(cards); err != nil {
		return 0, err
	}

	var best HandRank
	var five [5]Card
	for _, idx := range subsets[len(cards)] {
		for i, j := range idx {
			five[i] = cards[j]
		}
		if r := evaluate5(&five); r > best {
			best = r
		}
	}
	return best, nil
}

// EvaluateHand ranks the best five-card hand contained in h.
func EvaluateHand(h Hand) (HandRank, error) {
	var buf [7]Card
	n := 0
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		if n == len(buf) {
			return 0, fmt.Errorf("%w: got %d", ErrTooManyCards, h.Count())
		}
		buf[n] = Card(rest & -rest)
		n++
	}
	return Evaluate(buf[:n]...)
}

// evaluate5 classifies exactly five distinct cards.
func evaluate5(cards *[5]Card) HandRank {
	var counts [numRanks]uint8
	var mask uint16
	flush := true
	suit := cards[0].Suit()
	for _, c := range cards {
		r := c.Rank()
		counts[r]++
		mask |= 1 << r
		if c.Suit() != suit {
			flush = false
		}
	}

	// Group ranks by (count desc, rank desc).
	var key [5]Rank
	var groups [5]uint8
	n := 0
	for count := uint8(4); count >= 1; count-- {
		for r := int(Ace); r >= int(Two); r-- {
			if counts[r] == count {
				key[n] = Rank(r)
				groups[n] = count
				n++
			}
		}
	}

	var high Rank
	straight := false
	if n == 5 {
		high, straight = straightHigh(mask)
	}

	switch {
	case straight && flush:
		if high == Ace {
			return newHandRank(RoyalFlush, []Rank{Ace})
		}
		return newHandRank(StraightFlush, []Rank{high})
	case groups[0] == 4:
		return newHandRank(FourOfAKind, key[:2])
	case groups[0] == 3 && groups[1] == 2:
		return newHandRank(FullHouse, key[:2])
	case flush:
		return newHandRank(Flush, key[:5])
	case straight:
		return newHandRank(Straight, []Rank{high})
	case groups[0] == 3:
		return newHandRank(ThreeOfAKind, key[:3])
	case groups[0] == 2 && groups[1] == 2:
		return newHandRank(TwoPair, key[:3])
	case groups[0] == 2:
		return newHandRank(Pair, key[:4])
	default:
		return newHandRank(HighCard, key[:5])
	}
}

// straightHigh returns the high card of the straight formed by a five-rank
// mask. The wheel (A-2-3-4-5) is five-high.
func straightHigh(mask uint16) (Rank, bool) {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	if mask == wheelMask {
		return Five, true
	}
	low := bits.TrailingZeros16(mask)
	if mask>>low == 0x1F {
		return Rank(low + 4), true
	}
	return 0, false
}

// CompareHands compares two ranks and returns 1 if a wins, -1 if b wins, 0 for tie.
func CompareHands(a, b HandRank) int {
	return a.Compare(b)
}
