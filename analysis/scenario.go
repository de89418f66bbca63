package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/pokerequity/poker"
)

// Method names the algorithm that produced a result.
type Method string

const (
	// MethodAuto lets the selector decide.
	MethodAuto             Method = ""
	MethodExact            Method = "exact"
	MethodMonteCarlo       Method = "monte_carlo"
	MethodVectorMonteCarlo Method = "vector_monte_carlo"
)

// ParseMethod accepts the method names used on the command line and in
// configuration files.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return MethodAuto, nil
	case "exact", "enumerate":
		return MethodExact, nil
	case "mc", "monte_carlo", "monte-carlo":
		return MethodMonteCarlo, nil
	case "vector", "vector_monte_carlo", "vectorized", "batch":
		return MethodVectorMonteCarlo, nil
	default:
		return MethodAuto, fmt.Errorf("%w: unknown method %q", ErrConfiguration, s)
	}
}

// Tuning holds the knobs for one computation. Zero values take the
// calculator's defaults.
type Tuning struct {
	// MaxTrials caps the number of simulated trials.
	MaxTrials int64
	// TargetRadius is the Wilson half-width at which simulation stops early.
	// NoTargetRadius, or any negative value, runs to MaxTrials.
	TargetRadius float64
	// Confidence is the confidence level for the Wilson interval, in (0,1).
	Confidence float64
	BatchSize  int64
	MinTrials  int64
	// Seed makes simulation reproducible. Nil derives a seed from the clock.
	Seed *int64
	// TimeBudget stops simulation after the given wall time.
	TimeBudget time.Duration
	// EnumerationCeiling is the largest combination count enumerated exactly.
	EnumerationCeiling uint64
	// Method forces an algorithm instead of letting the selector choose.
	Method Method
}

// Default tuning values.
const (
	DefaultMaxTrials          = 2_000_000
	DefaultTargetRadius       = 0.005
	DefaultConfidence         = 0.95
	DefaultBatchSize          = 1000
	DefaultMinTrials          = 100
	DefaultEnumerationCeiling = 250_000
)

// NoTargetRadius disables the early stop on confidence radius.
const NoTargetRadius = -1.0

// DefaultTuning returns the calculator defaults.
func DefaultTuning() Tuning {
	return Tuning{
		MaxTrials:          DefaultMaxTrials,
		TargetRadius:       DefaultTargetRadius,
		Confidence:         DefaultConfidence,
		BatchSize:          DefaultBatchSize,
		MinTrials:          DefaultMinTrials,
		EnumerationCeiling: DefaultEnumerationCeiling,
	}
}

// Merge returns t with every zero field taken from def.
func (t Tuning) Merge(def Tuning) Tuning {
	if t.MaxTrials == 0 {
		t.MaxTrials = def.MaxTrials
	}
	if t.TargetRadius == 0 {
		t.TargetRadius = def.TargetRadius
	}
	if t.Confidence == 0 {
		t.Confidence = def.Confidence
	}
	if t.BatchSize == 0 {
		t.BatchSize = def.BatchSize
	}
	if t.MinTrials == 0 {
		t.MinTrials = def.MinTrials
	}
	if t.Seed == nil {
		t.Seed = def.Seed
	}
	if t.TimeBudget == 0 {
		t.TimeBudget = def.TimeBudget
	}
	if t.EnumerationCeiling == 0 {
		t.EnumerationCeiling = def.EnumerationCeiling
	}
	if t.Method == MethodAuto {
		t.Method = def.Method
	}
	return t
}

// Validate checks the simulation knobs. When strictTarget is set a target
// radius that MaxTrials cannot reach is an error; otherwise the simulation
// simply runs to MaxTrials.
func (t Tuning) Validate(strictTarget bool) error {
	switch {
	case t.MaxTrials <= 0:
		return &ConfigError{Reason: fmt.Sprintf("max trials must be positive, got %d", t.MaxTrials)}
	case t.BatchSize <= 0:
		return &ConfigError{Reason: fmt.Sprintf("batch size must be positive, got %d", t.BatchSize)}
	case t.MinTrials < 0:
		return &ConfigError{Reason: fmt.Sprintf("min trials must not be negative, got %d", t.MinTrials)}
	case t.Confidence <= 0 || t.Confidence >= 1:
		return &ConfigError{Reason: fmt.Sprintf("confidence must be in (0,1), got %g", t.Confidence)}
	case t.TimeBudget < 0:
		return &ConfigError{Reason: fmt.Sprintf("time budget must not be negative, got %s", t.TimeBudget)}
	}
	switch t.Method {
	case MethodAuto, MethodExact, MethodMonteCarlo, MethodVectorMonteCarlo:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown method %q", t.Method)}
	}

	if strictTarget && t.TargetRadius > 0 {
		if worst := WorstCaseRadius(t.MaxTrials, t.Confidence); worst > t.TargetRadius {
			return &ConfigError{
				Reason: fmt.Sprintf("target radius %g unreachable within %d trials (worst case %.4f)",
					t.TargetRadius, t.MaxTrials, worst),
				RequiredTrials: RequiredTrials(t.TargetRadius, t.Confidence),
			}
		}
	}
	return nil
}

// Scenario is one equity question: hero's hole cards, the known community
// cards and one hole source per opponent.
type Scenario struct {
	Hero      []poker.Card
	Board     []poker.Card
	Opponents []HoleSource
	Tuning    Tuning
}

// ScenarioText is the textual form of a scenario used by presets, the CLI
// and the server.
type ScenarioText struct {
	Hero  string `json:"hero"`
	Board string `json:"board,omitempty"`
	// Villains describes the first opponents: a known pair, a range, or
	// "random".
	Villains []string `json:"villains,omitempty"`
	// Opponents is the total number of opponents. Seats beyond Villains hold
	// random cards.
	Opponents int `json:"opponents,omitempty"`
}

// Scenario parses the text into a Scenario. With no opponents described
// the hero faces one random hand.
func (st ScenarioText) Scenario(tuning Tuning) (Scenario, error) {
	hero, err := poker.ParseCards(st.Hero)
	if err != nil {
		return Scenario{}, fmt.Errorf("%w: hero: %w", ErrValidation, err)
	}
	board, err := poker.ParseCards(st.Board)
	if err != nil {
		return Scenario{}, fmt.Errorf("%w: board: %w", ErrValidation, err)
	}

	if st.Opponents < 0 {
		return Scenario{}, validationf("opponents must not be negative, got %d", st.Opponents)
	}
	seats := max(st.Opponents, len(st.Villains), 1)
	if limit := (poker.NumCards - len(hero) - len(board)) / 2; seats > limit {
		return Scenario{}, validationf("%d opponents cannot be dealt from %d cards", seats, poker.NumCards-len(hero)-len(board))
	}
	opponents := make([]HoleSource, 0, seats)
	for _, v := range st.Villains {
		src, err := ParseHoleSource(v)
		if err != nil {
			return Scenario{}, err
		}
		opponents = append(opponents, src)
	}
	for len(opponents) < seats {
		opponents = append(opponents, RandomHole{})
	}

	return Scenario{Hero: hero, Board: board, Opponents: opponents, Tuning: tuning}, nil
}

// String renders the scenario for logs.
func (s Scenario) String() string {
	opps := make([]string, len(s.Opponents))
	for i, o := range s.Opponents {
		if o == nil {
			opps[i] = "<nil>"
			continue
		}
		opps[i] = o.String()
	}
	board := poker.FormatCards(s.Board, "")
	if board == "" {
		board = "-"
	}
	return fmt.Sprintf("%s on %s vs [%s]", poker.FormatCards(s.Hero, ""), board, strings.Join(opps, " | "))
}
