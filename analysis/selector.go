package analysis

// Shape summarises a scenario for method selection.
type Shape struct {
	// UnknownBoard is the number of community cards still to come.
	UnknownBoard int
	// RandomOpponents is the number of opponents holding any two cards.
	RandomOpponents int
	// RangeCombos lists the live combo count of each range opponent.
	RangeCombos []int
	// Remaining is the number of cards not held by the hero, the board or
	// known opponents.
	Remaining int
	// Ceiling is the largest combination count enumerated exactly.
	Ceiling uint64
	// VectorBackend reports whether the batch simulator can run in parallel.
	VectorBackend bool
}

// Combinations counts the assignments exact enumeration would visit:
// every board completion times every sequence of random opponent pairs
// times every range combo.
func (s Shape) Combinations() uint64 {
	total := binomial(s.Remaining, s.UnknownBoard)
	left := s.Remaining - s.UnknownBoard
	for range s.RandomOpponents {
		total = mulSat(total, binomial(left, 2))
		left -= 2
	}
	for _, n := range s.RangeCombos {
		total = mulSat(total, uint64(n))
	}
	return total
}

// SelectMethod picks exact enumeration when the space fits under the
// ceiling, the batch simulator when parallel workers are available, and the
// scalar simulator otherwise.
func SelectMethod(s Shape) Method {
	switch {
	case s.Combinations() <= s.Ceiling:
		return MethodExact
	case s.VectorBackend:
		return MethodVectorMonteCarlo
	default:
		return MethodMonteCarlo
	}
}
