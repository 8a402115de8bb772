package priceoracle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for price lookups.
type Metrics struct {
	LookupLatency *prometheus.HistogramVec
	BreakerState  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "awardregistry_price_lookup_duration_seconds",
			Help:    "Duration of price feed lookups by outcome",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "awardregistry_price_feed_circuit_state",
			Help: "Current price feed circuit state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) SetBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
