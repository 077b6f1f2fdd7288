// Package metrics provides Prometheus-based recording and querying for the
// intake flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"intakebot/pkg/proto"
)

// PrometheusRecorder implements the flow.Recorder interface using
// Prometheus metrics.
type PrometheusRecorder struct {
	transitionsTotal *prometheus.CounterVec
	finalizeTotal    *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder registering its metrics with the
// default registry. sessionLen, when non-nil, backs an active-sessions gauge.
func NewPrometheusRecorder(sessionLen func() int) *PrometheusRecorder {
	if sessionLen != nil {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Number of sessions currently in the intake flow",
		}, func() float64 { return float64(sessionLen()) })
	}

	return &PrometheusRecorder{
		transitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_transitions_total",
				Help: "Total accepted step transitions by from/to step",
			},
			[]string{"from", "to"},
		),
		finalizeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_finalize_total",
				Help: "Total finalizations by outcome",
			},
			[]string{"outcome"},
		),
		rejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_rejected_events_total",
				Help: "Events rejected because they did not match the current step",
			},
			[]string{"step", "kind"},
		),
	}
}

// ObserveTransition records one accepted step transition.
func (p *PrometheusRecorder) ObserveTransition(from, to proto.Step) {
	p.transitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

// ObserveFinalize records one finalization outcome.
func (p *PrometheusRecorder) ObserveFinalize(outcome string) {
	p.finalizeTotal.WithLabelValues(outcome).Inc()
}

// ObserveRejected records one mismatched event.
func (p *PrometheusRecorder) ObserveRejected(step proto.Step, kind proto.EventKind) {
	p.rejectedTotal.WithLabelValues(step.String(), string(kind)).Inc()
}
