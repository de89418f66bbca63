package poker

import "errors"

var (
	// ErrInvalidCard reports malformed card text or an invalid card value.
	ErrInvalidCard = errors.New("invalid card")

	// ErrDuplicateCard reports a card used more than once.
	ErrDuplicateCard = errors.New("duplicate card")

	// ErrEvaluation is the parent of errors raised when a card set cannot be
	// ranked. Callers that validate their input should never see it.
	ErrEvaluation = errors.New("cannot evaluate hand")

	// ErrNotEnoughCards is returned when fewer than five cards are evaluated.
	ErrNotEnoughCards = evaluationError("fewer than 5 cards")

	// ErrTooManyCards is returned when more than seven cards are evaluated.
	ErrTooManyCards = evaluationError("more than 7 cards")
)

type evaluationError string

func (e evaluationError) Error() string { return string(e) }

func (e evaluationError) Is(target error) bool { return target == ErrEvaluation }
