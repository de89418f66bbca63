// Package metrics exports calculator activity as Prometheus metrics.
package metrics

import (
	"github.com/lox/pokerequity/analysis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pokerequity"

// Recorder implements analysis.Recorder on a Prometheus registry.
type Recorder struct {
	calculations *prometheus.CounterVec
	samples      *prometheus.HistogramVec
	duration     *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	earlyStops   prometheus.Counter
}

var _ analysis.Recorder = (*Recorder)(nil)

// NewRecorder registers the calculator metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	auto := promauto.With(reg)
	return &Recorder{
		calculations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Completed equity calculations by method",
		}, []string{"method"}),
		samples: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_samples",
			Help:      "Outcomes evaluated per calculation",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
		}, []string{"method"}),
		duration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Wall time per calculation",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method"}),
		errors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_errors_total",
			Help:      "Failed calculations by error kind",
		}, []string{"kind"}),
		fallbacks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_fallbacks_total",
			Help:      "Calculations that abandoned one method for another",
		}, []string{"from", "to"}),
		earlyStops: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_stopped_early_total",
			Help:      "Simulations that met the confidence target or time budget before the trial cap",
		}),
	}
}

func (r *Recorder) ObserveResult(res analysis.EquityResult) {
	method := string(res.Method)
	r.calculations.WithLabelValues(method).Inc()
	r.samples.WithLabelValues(method).Observe(float64(res.Samples))
	r.duration.WithLabelValues(method).Observe(res.Elapsed.Seconds())
	if res.StoppedEarly {
		r.earlyStops.Inc()
	}
}

func (r *Recorder) ObserveError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

func (r *Recorder) ObserveFallback(from, to analysis.Method) {
	r.fallbacks.WithLabelValues(string(from), string(to)).Inc()
}
