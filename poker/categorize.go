package poker

// HoleCardCategory is a coarse preflop strength bucket for a starting hand.
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards buckets two hole cards:
// Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (22-66, suited cards within two ranks), Trash (everything else).
func CategorizeHoleCards(a, b Card) HoleCardCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return CategoryUnknown
	}

	lo, hi := a.Rank(), b.Rank()
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := a.Suit() == b.Suit()

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return CategoryPremium
	case pair && lo == Ten, hi == Ace && (lo == Queen || lo == Jack):
		return CategoryStrong
	case pair && lo >= Seven, suited && lo >= Ten:
		return CategoryMedium
	case pair, suited && hi-lo <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}
