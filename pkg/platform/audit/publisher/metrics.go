package publisher

import (
	audit "awardregistry/pkg/platform/audit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Emitted          *prometheus.CounterVec
	Dropped          prometheus.Counter
	PersistFailures  prometheus.Counter
	SinkFailures     *prometheus.CounterVec
	SinkDropped      *prometheus.CounterVec
	SinkBreakerState *prometheus.GaugeVec
}

// NewMetrics registers audit metrics on reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "awardregistry_audit_events_emitted_total",
			Help: "Total number of audit events persisted, by category",
		}, []string{"category"}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_audit_persist_failures_total",
			Help: "Total number of audit store append failures",
		}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "awardregistry_audit_sink_failures_total",
			Help: "Total number of failed sink deliveries",
		}, []string{"sink"}),
		SinkDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "awardregistry_audit_sink_circuit_dropped_total",
			Help: "Total number of sink deliveries skipped while the circuit was open",
		}, []string{"sink"}),
		SinkBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "awardregistry_audit_sink_circuit_state",
			Help: "Current sink circuit state (0=closed/healthy, 1=open/unhealthy)",
		}, []string{"sink"}),
	}
}

func (m *Metrics) IncEmitted(category audit.EventCategory) {
	m.Emitted.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

func (m *Metrics) IncSinkFailures(sink string) {
	m.SinkFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncSinkDropped(sink string) {
	m.SinkDropped.WithLabelValues(sink).Inc()
}

func (m *Metrics) SetSinkBreakerState(sink string, open bool) {
	if open {
		m.SinkBreakerState.WithLabelValues(sink).Set(1)
	} else {
		m.SinkBreakerState.WithLabelValues(sink).Set(0)
	}
}
