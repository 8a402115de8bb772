package metrics

import (
	"math/big"
	"time"

	id "awardregistry/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	CompaniesCreated  prometheus.Counter
	UsersRegistered   prometheus.Counter
	UsersDeleted      prometheus.Counter
	AwardsDistributed prometheus.Counter
	Withdrawals       prometheus.Counter

	// Value flows in base units. Float precision is acceptable for dashboards;
	// the ledger remains the source of truth.
	FeesRetained  prometheus.Counter
	Refunded      prometheus.Counter
	PrizesPaid    prometheus.Counter
	FeesWithdrawn prometheus.Counter

	// Operation latency by operation name and outcome error code.
	OperationLatency *prometheus.HistogramVec
}

// New registers registry metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		CompaniesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_companies_created_total",
			Help: "Total number of companies created",
		}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_users_registered_total",
			Help: "Total number of successful user registrations",
		}),
		UsersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_users_deleted_total",
			Help: "Total number of users removed from companies",
		}),
		AwardsDistributed: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_awards_distributed_total",
			Help: "Total number of awards paid to members",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_withdrawals_total",
			Help: "Total number of registration charge withdrawals",
		}),
		FeesRetained: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_fees_retained_base_units_total",
			Help: "Registration fees retained into the pool, in base units",
		}),
		Refunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_refunded_base_units_total",
			Help: "Overpayments refunded to registrants, in base units",
		}),
		PrizesPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_prizes_paid_base_units_total",
			Help: "Prize value paid to award winners, in base units",
		}),
		FeesWithdrawn: factory.NewCounter(prometheus.CounterOpts{
			Name: "awardregistry_fees_withdrawn_base_units_total",
			Help: "Pooled fees withdrawn by the owner, in base units",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "awardregistry_operation_duration_seconds",
			Help:    "Duration of registry operations including lock wait and transfers",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) IncrementCompaniesCreated() {
	if m != nil {
		m.CompaniesCreated.Inc()
	}
}

// RecordRegistration records a registration with its retained and refunded value.
func (m *Metrics) RecordRegistration(retained, refunded id.Amount) {
	if m != nil {
		m.UsersRegistered.Inc()
		m.FeesRetained.Add(toFloat(retained))
		m.Refunded.Add(toFloat(refunded))
	}
}

func (m *Metrics) IncrementUsersDeleted() {
	if m != nil {
		m.UsersDeleted.Inc()
	}
}

func (m *Metrics) RecordWithdrawal(amount id.Amount) {
	if m != nil {
		m.Withdrawals.Inc()
		m.FeesWithdrawn.Add(toFloat(amount))
	}
}

func (m *Metrics) RecordAward(prize id.Amount) {
	if m != nil {
		m.AwardsDistributed.Inc()
		m.PrizesPaid.Add(toFloat(prize))
	}
}

// ObserveOperation records the duration of op. outcome is "ok" or an error code.
func (m *Metrics) ObserveOperation(op, outcome string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(op, outcome).Observe(d.Seconds())
	}
}

func toFloat(a id.Amount) float64 {
	f, _ := new(big.Float).SetInt(a.Big()).Float64()
	return f
}
