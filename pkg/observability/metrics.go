// Package observability exposes the engine's prometheus collectors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors. A nil *Metrics is a valid no-op
// receiver so instrumentation never forces a registry on library users.
type Metrics struct {
	instructionsIssued *prometheus.CounterVec
	guardRejections    *prometheus.CounterVec
	progressAcks       *prometheus.CounterVec
	snapshotDuration   prometheus.Histogram
}

// New creates and registers the engine collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		instructionsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waymark",
			Name:      "instructions_issued_total",
			Help:      "Instructions handed out, by recommended action.",
		}, []string{"action"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waymark",
			Name:      "guard_rejections_total",
			Help:      "Instructions downgraded by the pre-flight guard, by reason.",
		}, []string{"reason"}),
		progressAcks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waymark",
			Name:      "progress_acks_total",
			Help:      "Progress acknowledgements, by outcome.",
		}, []string{"outcome"}),
		snapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waymark",
			Name:      "snapshot_build_seconds",
			Help:      "Time spent building artifact graph snapshots.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.instructionsIssued, m.guardRejections, m.progressAcks, m.snapshotDuration)
	return m
}

// InstructionIssued records one handed-out instruction.
func (m *Metrics) InstructionIssued(action string) {
	if m == nil {
		return
	}
	m.instructionsIssued.WithLabelValues(action).Inc()
}

// GuardRejected records one guard downgrade.
func (m *Metrics) GuardRejected(reason string) {
	if m == nil {
		return
	}
	m.guardRejections.WithLabelValues(reason).Inc()
}

// ProgressAck records one acknowledgement outcome
// ("advanced", "stale", "unknown_project" or "unknown_node").
func (m *Metrics) ProgressAck(outcome string) {
	if m == nil {
		return
	}
	m.progressAcks.WithLabelValues(outcome).Inc()
}

// SnapshotBuilt records the duration of one snapshot build.
func (m *Metrics) SnapshotBuilt(seconds float64) {
	if m == nil {
		return
	}
	m.snapshotDuration.Observe(seconds)
}
