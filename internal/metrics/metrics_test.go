package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lox/pokerequity/analysis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveResult(analysis.EquityResult{Method: analysis.MethodExact, Samples: 990, Elapsed: 3 * time.Millisecond})
	r.ObserveResult(analysis.EquityResult{Method: analysis.MethodMonteCarlo, Samples: 20_000, StoppedEarly: true})
	r.ObserveResult(analysis.EquityResult{Method: analysis.MethodMonteCarlo, Samples: 20_000})
	r.ObserveError("validation")
	r.ObserveFallback(analysis.MethodExact, analysis.MethodVectorMonteCarlo)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.calculations.WithLabelValues("exact")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.calculations.WithLabelValues("monte_carlo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("exact", "vector_monte_carlo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.earlyStops))
	assert.Equal(t, 2, testutil.CollectAndCount(r.samples))

	expected := `
# HELP pokerequity_calculation_errors_total Failed calculations by error kind
# TYPE pokerequity_calculation_errors_total counter
pokerequity_calculation_errors_total{kind="validation"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pokerequity_calculation_errors_total"))
}

func TestRecorderWiredIntoCalculator(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	calc := analysis.NewCalculator(analysis.WithRecorder(r))

	s, err := analysis.ScenarioText{Hero: "AsAh", Board: "2c7d9hJcQd", Villains: []string{"KsKh"}}.Scenario(analysis.Tuning{})
	require.NoError(t, err)
	_, err = calc.Compute(context.Background(), s)
	require.NoError(t, err)

	bad, err := analysis.ScenarioText{Hero: "AsKh", Board: "AsQd7c"}.Scenario(analysis.Tuning{})
	require.NoError(t, err)
	_, err = calc.Compute(context.Background(), bad)
	require.ErrorIs(t, err, analysis.ErrValidation)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.calculations.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("validation")))
}
