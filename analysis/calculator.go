package analysis

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Recorder observes calculator activity. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ObserveResult(res EquityResult)
	ObserveError(kind string)
	ObserveFallback(from, to Method)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResult(EquityResult)    {}
func (nopRecorder) ObserveError(string)           {}
func (nopRecorder) ObserveFallback(Method, Method) {}

// Calculator validates scenarios, selects a method and runs it. It holds no
// per-call state and is safe for concurrent use.
type Calculator struct {
	logger   *log.Logger
	clock    quartz.Clock
	recorder Recorder
	defaults Tuning
	workers  int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used for method selection and fallbacks.
func WithLogger(logger *log.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

// WithClock sets the clock used for time budgets, seeds and timings.
func WithClock(clock quartz.Clock) Option {
	return func(c *Calculator) { c.clock = clock }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Calculator) { c.recorder = r }
}

// WithDefaults sets the tuning applied to zero fields of each scenario.
func WithDefaults(t Tuning) Option {
	return func(c *Calculator) { c.defaults = t.Merge(DefaultTuning()) }
}

// WithWorkers sets the number of goroutines for the batch simulator. With
// one worker the scalar simulator is used.
func WithWorkers(n int) Option {
	return func(c *Calculator) { c.workers = max(n, 1) }
}

// NewCalculator creates a calculator. Without options it logs nowhere,
// uses the real clock and runs up to 8 workers.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		clock:    quartz.NewReal(),
		recorder: nopRecorder{},
		defaults: DefaultTuning(),
		workers:  min(runtime.NumCPU(), 8),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("equity")
	return c
}

// Compute answers a scenario. Exact enumeration is used when the space fits
// under the ceiling; when the enumerator reports the space infeasible the
// calculator falls back to simulation. Every other error is returned.
func (c *Calculator) Compute(ctx context.Context, s Scenario) (EquityResult, error) {
	res, err := c.compute(ctx, s)
	if err != nil {
		kind := ErrorKind(err)
		c.recorder.ObserveError(kind)
		c.logger.Debug("Computation failed", "scenario", s, "kind", kind, "error", err)
		return EquityResult{}, err
	}
	c.recorder.ObserveResult(res)
	return res, nil
}

func (c *Calculator) compute(ctx context.Context, s Scenario) (EquityResult, error) {
	start := c.clock.Now("compute", "start")

	tuning := s.Tuning.Merge(c.defaults)
	if err := tuning.Validate(s.Tuning.TargetRadius > 0); err != nil {
		return EquityResult{}, err
	}
	t, err := prepare(s)
	if err != nil {
		return EquityResult{}, err
	}

	shape := t.shape()
	shape.Ceiling = tuning.EnumerationCeiling
	shape.VectorBackend = c.workers > 1

	method := tuning.Method
	if method == MethodAuto {
		method = SelectMethod(shape)
	}
	c.logger.Debug("Selected method",
		"method", method,
		"forced", tuning.Method != MethodAuto,
		"combinations", shape.Combinations(),
		"ceiling", shape.Ceiling)

	return c.run(ctx, t, tuning, method, start)
}

// run executes the chosen method. An infeasible enumeration falls back to
// simulation unless exact was forced.
func (c *Calculator) run(ctx context.Context, t *table, tuning Tuning, method Method, start time.Time) (EquityResult, error) {
	if method == MethodExact {
		res, err := enumerate(ctx, t, tuning.EnumerationCeiling)
		switch {
		case err == nil:
			res.Elapsed = c.clock.Now("compute", "end").Sub(start)
			return res, nil
		case !errors.Is(err, ErrInfeasible) || tuning.Method == MethodExact:
			return EquityResult{}, err
		}
		method = MethodMonteCarlo
		if c.workers > 1 {
			method = MethodVectorMonteCarlo
		}
		c.recorder.ObserveFallback(MethodExact, method)
		c.logger.Debug("Enumeration infeasible, simulating", "error", err, "method", method)
	}

	workers := 1
	if method == MethodVectorMonteCarlo {
		workers = c.workers
	}
	return newSimulation(t, tuning, c.clock, method, workers).run(ctx)
}

var defaultCalculator = NewCalculator()

// Compute answers a scenario with a default calculator.
func Compute(ctx context.Context, s Scenario) (EquityResult, error) {
	return defaultCalculator.Compute(ctx, s)
}
