package analysis

import (
	"context"
	"math/rand/v2"

	"github.com/lox/pokerequity/poker"
	"golang.org/x/sync/errgroup"
)

// batchRunner deals a whole batch sequentially from the shared RNG stream,
// so the draw sequence matches the scalar runner, then evaluates the dealt
// trials across worker goroutines. Partial tallies are summed.
type batchRunner struct {
	t       *table
	dealer  *dealer
	workers int
	buf     []poker.Hand
	limit   int64
}

func newBatchRunner(t *table, maxTrials int64, batchSize, workers int) *batchRunner {
	d := newDealer(t)
	return &batchRunner{
		t:       t,
		dealer:  d,
		workers: workers,
		buf:     make([]poker.Hand, 0, batchSize*d.stride()),
		limit:   2 * maxTrials,
	}
}

func (r *batchRunner) run(ctx context.Context, rng *rand.Rand, trials int64, attempts *int64) (tally, error) {
	stride := r.dealer.stride()
	deals := r.buf[:0]
	slot := make([]poker.Hand, stride)
	for dealt := int64(0); dealt < trials; {
		if *attempts >= r.limit {
			return tally{}, errRejected(*attempts)
		}
		*attempts++
		if !r.dealer.deal(rng, slot) {
			continue
		}
		deals = append(deals, slot...)
		dealt++
	}
	r.buf = deals

	n := len(deals) / stride
	workers := min(r.workers, n)
	if workers <= 1 {
		return r.evaluate(deals, stride)
	}

	partial := make([]tally, workers)
	chunk := (n + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := w * chunk * stride
		hi := min((w+1)*chunk, n) * stride
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.evaluate(deals[lo:hi], stride)
			partial[w] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return tally{}, err
	}

	var out tally
	for _, p := range partial {
		out.add(p)
	}
	return out, nil
}

func (r *batchRunner) evaluate(deals []poker.Hand, stride int) (tally, error) {
	var out tally
	for i := 0; i+stride <= len(deals); i += stride {
		o, err := r.t.evaluate(deals[i : i+stride])
		if err != nil {
			return out, err
		}
		out.add(o)
	}
	return out, nil
}
