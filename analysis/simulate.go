package analysis

import (
	"context"
	"math/rand/v2"

	"github.com/coder/quartz"
	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
)

// dealer draws one trial at a time: range opponents first, in seat order,
// then the board completion and random opponents from a deck holding the
// remaining cards. A trial is laid out as [board, opponent 1, ..., opponent n].
type dealer struct {
	t    *table
	deck *poker.Deck
}

func newDealer(t *table) *dealer {
	return &dealer{t: t, deck: poker.NewDeck(t.dead)}
}

func (d *dealer) stride() int { return 1 + d.t.opponents() }

// deal fills dst with one trial. It returns false when a range opponent
// drew a combo overlapping an earlier seat, in which case the trial is
// rejected.
func (d *dealer) deal(rng *rand.Rand, dst []poker.Hand) bool {
	t := d.t
	dead := t.dead
	slot := 1
	for _, h := range t.fixed {
		dst[slot] = h
		slot++
	}
	for _, seat := range t.ranges {
		combo, ok := seat.Sample(rng, dead)
		if !ok {
			return false
		}
		dead |= combo
		dst[slot] = combo
		slot++
	}

	d.deck.Reset(dead)
	cards := d.deck.Draw(rng, t.need+2*t.random)
	dst[0] = t.board | poker.NewHand(cards[:t.need]...)
	for i := t.need; i < len(cards); i += 2 {
		dst[slot] = poker.NewHand(cards[i], cards[i+1])
		slot++
	}
	return true
}

// evaluate scores one dealt trial.
func (t *table) evaluate(trial []poker.Hand) (tally, error) {
	board := trial[0]
	hero, err := poker.EvaluateHand(t.hero | board)
	if err != nil {
		return tally{}, err
	}
	return score(hero, board, trial[1:])
}

// runner executes a batch of trials and returns their tally. attempts is
// shared across batches so that rejection sampling stays bounded.
type runner interface {
	run(ctx context.Context, rng *rand.Rand, trials int64, attempts *int64) (tally, error)
}

// scalarRunner deals and evaluates one trial at a time.
type scalarRunner struct {
	t      *table
	dealer *dealer
	buf    []poker.Hand
	limit  int64
}

func newScalarRunner(t *table, maxTrials int64) *scalarRunner {
	d := newDealer(t)
	return &scalarRunner{t: t, dealer: d, buf: make([]poker.Hand, d.stride()), limit: 2 * maxTrials}
}

func (r *scalarRunner) run(_ context.Context, rng *rand.Rand, trials int64, attempts *int64) (tally, error) {
	var out tally
	for done := int64(0); done < trials; {
		if *attempts >= r.limit {
			return out, errRejected(*attempts)
		}
		*attempts++
		if !r.dealer.deal(rng, r.buf) {
			continue
		}
		o, err := r.t.evaluate(r.buf)
		if err != nil {
			return out, err
		}
		out.add(o)
		done++
	}
	return out, nil
}

func errRejected(attempts int64) error {
	return validationf("range opponents conflicted in too many trials (%d attempts)", attempts)
}

// simulation holds the resolved knobs for one Monte Carlo run.
type simulation struct {
	t      *table
	tuning Tuning
	seed   int64
	clock  quartz.Clock
	runner runner
	method Method
}

// run executes batches until the confidence target, the trial cap or the
// time budget is reached, or ctx is done.
func (s *simulation) run(ctx context.Context) (EquityResult, error) {
	rng := randutil.New(s.seed)
	z := ZScore(s.tuning.Confidence)
	start := s.clock.Now("simulate", "start")

	var total tally
	var attempts int64
	stoppedEarly := false
	for total.total() < s.tuning.MaxTrials {
		if err := ctx.Err(); err != nil {
			return EquityResult{}, err
		}

		batch := min(s.tuning.BatchSize, s.tuning.MaxTrials-total.total())
		got, err := s.runner.run(ctx, rng, batch, &attempts)
		if err != nil {
			return EquityResult{}, err
		}
		total.add(got)

		n := total.total()
		if s.tuning.TargetRadius > 0 && n >= s.tuning.MinTrials {
			if _, _, radius := Wilson(total.wins, n, z); radius <= s.tuning.TargetRadius {
				stoppedEarly = n < s.tuning.MaxTrials
				break
			}
		}
		if s.tuning.TimeBudget > 0 && s.clock.Now("simulate", "batch").Sub(start) >= s.tuning.TimeBudget {
			stoppedEarly = n < s.tuning.MaxTrials
			break
		}
	}

	res := total.result(s.method, z)
	res.StoppedEarly = stoppedEarly
	res.Seed = s.seed
	res.Elapsed = s.clock.Now("simulate", "end").Sub(start)
	return res, nil
}

// Simulate runs the scalar Monte Carlo simulator with the given tuning and
// clock. Defaults are applied to zero tuning fields.
func Simulate(ctx context.Context, s Scenario, clock quartz.Clock) (EquityResult, error) {
	return simulateWith(ctx, s, clock, 1)
}

// SimulateBatch runs the batch simulator, evaluating each dealt batch on up
// to workers goroutines. For the same seed its tallies equal Simulate's.
func SimulateBatch(ctx context.Context, s Scenario, clock quartz.Clock, workers int) (EquityResult, error) {
	return simulateWith(ctx, s, clock, max(workers, 1))
}

func simulateWith(ctx context.Context, s Scenario, clock quartz.Clock, workers int) (EquityResult, error) {
	tuning := s.Tuning.Merge(DefaultTuning())
	if err := tuning.Validate(s.Tuning.TargetRadius > 0); err != nil {
		return EquityResult{}, err
	}
	t, err := prepare(s)
	if err != nil {
		return EquityResult{}, err
	}
	method := MethodMonteCarlo
	if workers > 1 {
		method = MethodVectorMonteCarlo
	}
	sim := newSimulation(t, tuning, clock, method, workers)
	return sim.run(ctx)
}

func newSimulation(t *table, tuning Tuning, clock quartz.Clock, method Method, workers int) *simulation {
	seed := seedFor(tuning, clock)
	var r runner
	if method == MethodVectorMonteCarlo {
		r = newBatchRunner(t, tuning.MaxTrials, int(tuning.BatchSize), workers)
	} else {
		r = newScalarRunner(t, tuning.MaxTrials)
	}
	return &simulation{t: t, tuning: tuning, seed: seed, clock: clock, runner: r, method: method}
}

// seedFor returns the configured seed or derives one from the clock.
func seedFor(tuning Tuning, clock quartz.Clock) int64 {
	if tuning.Seed != nil {
		return *tuning.Seed
	}
	return randutil.SeedFromTime(clock.Now("simulate", "seed"))
}
