// Package metrics exposes Prometheus collectors for search runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

const namespace = "localsearch"

// Recorder records the outcome of search runs.
type Recorder struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	iterations  *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
	bestValue   *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	active      prometheus.Gauge
	queued      prometheus.Gauge
}

// NewRecorder registers the collectors with reg. A nil reg creates
// unregistered collectors, which is what tests that build many recorders
// want.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished search runs by algorithm and stop reason.",
		}, []string{"algorithm", "reason"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Search runs that ended with an error, including cancellation.",
		}, []string{"algorithm"}),
		iterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Iterations used per finished run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"algorithm"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objective_evaluations_total",
			Help:      "Objective function evaluations.",
		}, []string{"algorithm"}),
		bestValue: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_best_value",
			Help:      "Best objective value of the most recent finished run.",
		}, []string{"algorithm", "objective"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time per run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Runs currently holding a worker slot.",
		}),
		queued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_runs",
			Help:      "Accepted runs waiting for a worker slot.",
		}),
	}
}

// Queued marks a job as waiting for a slot. The returned func undoes it.
func (r *Recorder) Queued() func() {
	r.queued.Inc()
	return r.queued.Dec
}

// Started marks a run as holding a slot. The returned func releases it.
func (r *Recorder) Started() func() {
	r.active.Inc()
	return r.active.Dec
}

// Finished records a completed run.
func (r *Recorder) Finished(algorithm, objective string, res *optimization.Result, elapsed time.Duration) {
	r.runs.WithLabelValues(algorithm, string(res.Reason)).Inc()
	r.iterations.WithLabelValues(algorithm).Observe(float64(res.Iterations))
	r.evaluations.WithLabelValues(algorithm).Add(float64(res.Evaluations))
	r.bestValue.WithLabelValues(algorithm, objective).Set(res.BestSolution.Value)
	r.duration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

// Failed records a run that returned an error.
func (r *Recorder) Failed(algorithm string, elapsed time.Duration) {
	r.failures.WithLabelValues(algorithm).Inc()
	r.duration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}
