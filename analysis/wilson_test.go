package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZScore(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 1.959964, ZScore(0.95), 1e-5)
	assert.InDelta(t, 2.575829, ZScore(0.99), 1e-5)
}

func TestWilson(t *testing.T) {
	t.Parallel()
	z := ZScore(0.95)

	low, high, radius := Wilson(50, 100, z)
	assert.InDelta(t, 0.5, (low+high)/2, 1e-12)
	assert.InDelta(t, 0.0962, radius, 1e-3)

	// The interval stays inside [0,1] at the extremes.
	low, high, _ = Wilson(0, 100, z)
	assert.InDelta(t, 0.0, low, 1e-12)
	assert.Greater(t, high, 0.0)
	low, high, _ = Wilson(100, 100, z)
	assert.Less(t, low, 1.0)
	assert.InDelta(t, 1.0, high, 1e-12)

	// The radius shrinks as trials grow.
	_, _, r1 := Wilson(500, 1000, z)
	_, _, r2 := Wilson(5000, 10000, z)
	assert.Less(t, r2, r1)
}

func TestRequiredTrials(t *testing.T) {
	t.Parallel()
	n := RequiredTrials(0.01, 0.95)
	assert.InDelta(t, 9604, n, 1)
	assert.LessOrEqual(t, WorstCaseRadius(n, 0.95), 0.01)
	assert.Greater(t, WorstCaseRadius(n/2, 0.95), 0.01)
}

func TestTuningValidate(t *testing.T) {
	t.Parallel()
	base := DefaultTuning()

	tests := []struct {
		name   string
		mutate func(*Tuning)
		strict bool
		ok     bool
	}{
		{"defaults", func(*Tuning) {}, true, true},
		{"zero max trials", func(t *Tuning) { t.MaxTrials = 0 }, false, false},
		{"zero batch", func(t *Tuning) { t.BatchSize = 0 }, false, false},
		{"confidence one", func(t *Tuning) { t.Confidence = 1 }, false, false},
		{"no target radius", func(t *Tuning) { t.TargetRadius = NoTargetRadius }, true, true},
		{"unknown method", func(t *Tuning) { t.Method = "magic" }, false, false},
		{"unreachable target", func(t *Tuning) { t.MaxTrials = 1000; t.TargetRadius = 0.001 }, true, false},
		{"unreachable target tolerated", func(t *Tuning) { t.MaxTrials = 1000; t.TargetRadius = 0.001 }, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tuning := base
			tt.mutate(&tuning)
			err := tuning.Validate(tt.strict)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestUnreachableTargetReportsRequiredTrials(t *testing.T) {
	t.Parallel()
	tuning := DefaultTuning()
	tuning.MaxTrials = 1000
	tuning.TargetRadius = 0.001

	err := tuning.Validate(true)
	var cfgErr *ConfigError
	if assert.ErrorAs(t, err, &cfgErr) {
		assert.Equal(t, RequiredTrials(0.001, 0.95), cfgErr.RequiredTrials)
		assert.Greater(t, cfgErr.RequiredTrials, int64(900_000))
	}
}
