// Package metrics exposes the run controller's per-arity progress as
// Prometheus metrics, the benchmarking instrumentation spec.md §1
// names as an external collaborator ("out of scope... logging,
// benchmarking instrumentation") but which every complete repo in the
// corpus still carries as ambient infrastructure.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters and gauges the run controller updates
// once per arity. A fresh Metrics is bound to its own prometheus.Registry
// so that repeated engine runs (e.g. in tests) never collide on
// Prometheus's global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	CurrentArity   prometheus.Gauge
	CandidatesSeen *prometheus.CounterVec
	IndsDiscovered *prometheus.CounterVec
	IarsEmitted    *prometheus.CounterVec
	PassDuration   *prometheus.HistogramVec
}

// New creates and registers a fresh Metrics instance.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		CurrentArity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sindy",
			Name:      "current_arity",
			Help:      "Arity the run controller is currently validating.",
		}),
		CandidatesSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sindy",
			Name:      "candidates_total",
			Help:      "Candidate INDs generated, labeled by arity.",
		}, []string{"arity"}),
		IndsDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sindy",
			Name:      "inds_total",
			Help:      "INDs confirmed, labeled by arity.",
		}, []string{"arity"}),
		IarsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sindy",
			Name:      "iars_total",
			Help:      "IND augmentation rules emitted, labeled by arity.",
		}, []string{"arity"}),
		PassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sindy",
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock duration of a single arity's validation pass.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"arity"}),
	}
	reg.MustRegister(m.CurrentArity, m.CandidatesSeen, m.IndsDiscovered, m.IarsEmitted, m.PassDuration)
	return m
}

// ObservePass records one arity's progress: how many candidates were
// validated, how many INDs and IARs resulted, and how long the pass
// took.
func (m *Metrics) ObservePass(arity, candidates, inds, iars int, duration time.Duration) {
	label := strconv.Itoa(arity)
	m.CurrentArity.Set(float64(arity))
	m.CandidatesSeen.WithLabelValues(label).Add(float64(candidates))
	m.IndsDiscovered.WithLabelValues(label).Add(float64(inds))
	m.IarsEmitted.WithLabelValues(label).Add(float64(iars))
	m.PassDuration.WithLabelValues(label).Observe(duration.Seconds())
}
