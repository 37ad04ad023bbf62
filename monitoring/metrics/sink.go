// Package metrics defines the observability collaborator the state
// transition driver reports into, kept as a narrow interface so
// beacon-chain/core/transition never imports Prometheus directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink receives observations from a single ExecuteStateTransition
// call. Implementations must not block or panic; the driver recovers
// and logs but does not fail a transition because its sink did.
type Sink interface {
	// ObserveStateTransition records the wall-clock duration of one
	// full ExecuteStateTransition call against the block's slot.
	ObserveStateTransition(d time.Duration, slot uint64)
	// IncEpochsProcessed increments the count of epoch-boundary
	// transitions run, tagged by the fork active during that epoch.
	IncEpochsProcessed(fork string)
	// IncBlockSignatureFailures increments the count of transitions
	// rejected for a bad signature somewhere in the block's batch.
	IncBlockSignatureFailures()
}

// NoopSink discards every observation. It is the driver's default
// collaborator so the hot path never pays for metrics plumbing it
// doesn't want.
type NoopSink struct{}

func (NoopSink) ObserveStateTransition(time.Duration, uint64) {}
func (NoopSink) IncEpochsProcessed(string)                    {}
func (NoopSink) IncBlockSignatureFailures()                   {}

// PrometheusSink registers and updates the package's own collectors,
// the same promauto-at-construction-time pattern the teacher uses in
// beacon-chain/operations/slashings/metrics.go and
// beacon-chain/core/helpers/metrics.go.
type PrometheusSink struct {
	transitionDuration prometheus.Histogram
	epochsProcessed    *prometheus.CounterVec
	signatureFailures  prometheus.Counter
}

// NewPrometheusSink constructs and registers a PrometheusSink against
// the default registerer via promauto. Call once per process; a
// second call would panic on duplicate registration, same as any
// other promauto collector in the teacher's codebase.
func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{
		transitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stf_state_transition_duration_seconds",
			Help:    "Time taken by a single ExecuteStateTransition call.",
			Buckets: prometheus.DefBuckets,
		}),
		epochsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stf_epochs_processed_total",
			Help: "Number of epoch-boundary transitions processed, by fork.",
		}, []string{"fork"}),
		signatureFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stf_block_signature_failures_total",
			Help: "Number of state transitions rejected for an invalid block signature.",
		}),
	}
}

func (s *PrometheusSink) ObserveStateTransition(d time.Duration, _ uint64) {
	s.transitionDuration.Observe(d.Seconds())
}

func (s *PrometheusSink) IncEpochsProcessed(fork string) {
	s.epochsProcessed.WithLabelValues(fork).Inc()
}

func (s *PrometheusSink) IncBlockSignatureFailures() {
	s.signatureFailures.Inc()
}
