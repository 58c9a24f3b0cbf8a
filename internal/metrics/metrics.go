// Package metrics defines the Prometheus collectors for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitledger"

// Delete outcomes recorded by DeleteTransitions.
const (
	DeletePending   = "pending"
	DeleteRemoved   = "removed"
	DeleteCancelled = "cancelled"
	DeleteExpired   = "expired"
)

// Metrics groups the ledger's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	ExpensesAdded      prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	EvenSplitRefusals  prometheus.Counter
	DeleteTransitions  *prometheus.CounterVec
	Expenses           prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExpensesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_added_total",
			Help:      "Expenses admitted to the ledger.",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected expense submissions by failing field.",
		}, []string{"field"}),
		EvenSplitRefusals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "even_split_refusals_total",
			Help:      "Even-split requests refused for lack of a positive amount.",
		}),
		DeleteTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_transitions_total",
			Help:      "Pending-delete transitions by outcome.",
		}, []string{"outcome"}),
		Expenses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expenses",
			Help:      "Expenses currently in the ledger.",
		}),
	}
	reg.MustRegister(
		m.ExpensesAdded,
		m.ValidationFailures,
		m.EvenSplitRefusals,
		m.DeleteTransitions,
		m.Expenses,
	)
	return m
}

// ExpenseAdded records an admission and the new ledger size.
func (m *Metrics) ExpenseAdded(count int) {
	if m == nil {
		return
	}
	m.ExpensesAdded.Inc()
	m.Expenses.Set(float64(count))
}

// ValidationFailed records one rejection per failing field.
func (m *Metrics) ValidationFailed(fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f).Inc()
	}
}

// EvenSplitRefused records a refused even split.
func (m *Metrics) EvenSplitRefused() {
	if m == nil {
		return
	}
	m.EvenSplitRefusals.Inc()
}

// DeleteTransition records a removal-flow transition.
func (m *Metrics) DeleteTransition(outcome string) {
	if m == nil {
		return
	}
	m.DeleteTransitions.WithLabelValues(outcome).Inc()
}

// SetExpenses sets the current ledger size.
func (m *Metrics) SetExpenses(count int) {
	if m == nil {
		return
	}
	m.Expenses.Set(float64(count))
}
