// Package metrics records adjudication pipeline counters and latencies on a
// private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "claims"

// DefaultBuckets are latency buckets in seconds.
var DefaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Recorder holds the pipeline's collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	processed     *prometheus.CounterVec
	errors        *prometheus.CounterVec
	fraudLevels   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	totalDuration prometheus.Histogram
}

// New builds a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_total",
			Help:      "Claims that reached a final decision, by decision.",
		}, []string{"decision"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Claims that failed, by pipeline stage.",
		}, []string{"stage"}),
		fraudLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_level_total",
			Help:      "Fraud assessments, by risk level.",
		}, []string{"level"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   DefaultBuckets,
		}, []string{"stage"}),
		totalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "total_duration_seconds",
			Help:      "End-to-end time to adjudicate one claim.",
			Buckets:   DefaultBuckets,
		}),
	}
	r.registry.MustRegister(r.processed, r.errors, r.fraudLevels, r.stageDuration, r.totalDuration)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *Recorder) StageError(stage string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(stage).Inc()
}

func (r *Recorder) Processed(decision string) {
	if r == nil {
		return
	}
	r.processed.WithLabelValues(decision).Inc()
}

func (r *Recorder) FraudLevel(level string) {
	if r == nil {
		return
	}
	r.fraudLevels.WithLabelValues(level).Inc()
}

func (r *Recorder) ObserveTotal(d time.Duration) {
	if r == nil {
		return
	}
	r.totalDuration.Observe(d.Seconds())
}

// WriteTextfile writes the current metric values in the text exposition
// format, suitable for a node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
