package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/pokerequity/poker"
)

var (
	// ErrValidation is wrapped by every error caused by a malformed scenario:
	// bad card text, duplicate cards, wrong card counts or an empty range.
	ErrValidation = errors.New("invalid scenario")

	// ErrInfeasible reports that exhaustive enumeration would exceed the
	// configured ceiling. The calculator recovers from it by simulating.
	ErrInfeasible = errors.New("exact enumeration infeasible")

	// ErrConfiguration reports contradictory tuning knobs.
	ErrConfiguration = errors.New("invalid configuration")
)

// InfeasibleError carries the size of an enumeration that was refused.
type InfeasibleError struct {
	Combinations uint64
	Ceiling      uint64
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: %d combinations exceeds ceiling %d", ErrInfeasible, e.Combinations, e.Ceiling)
}

func (e *InfeasibleError) Is(target error) bool { return target == ErrInfeasible }

// ConfigError describes a tuning problem. RequiredTrials is set when the
// target confidence radius cannot be reached within MaxTrials.
type ConfigError struct {
	Reason         string
	RequiredTrials int64
}

func (e *ConfigError) Error() string {
	if e.RequiredTrials > 0 {
		return fmt.Sprintf("%s: %s (about %d trials required)", ErrConfiguration, e.Reason, e.RequiredTrials)
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ErrorKind classifies err for logs, metrics and wire responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation),
		errors.Is(err, poker.ErrInvalidCard),
		errors.Is(err, poker.ErrDuplicateCard):
		return "validation"
	case errors.Is(err, ErrInfeasible):
		return "infeasible"
	case errors.Is(err, poker.ErrEvaluation):
		return "evaluation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
