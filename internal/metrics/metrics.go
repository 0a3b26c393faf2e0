// Package metrics exposes prometheus counters for the raffle subsystem.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the raffle counters.
type Metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	reconciled    *prometheus.CounterVec
	winnerSaves   *prometheus.CounterVec
	spins         *prometheus.CounterVec
}

// New creates and registers the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_registrations_total",
			Help: "Participant registration attempts by result code.",
		}, []string{"code"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_reconcile_orders_total",
			Help: "Orders processed by reconciliation by outcome.",
		}, []string{"outcome"}),
		winnerSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_winner_saves_total",
			Help: "Winner persistence attempts by result code.",
		}, []string{"code"}),
		spins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_spins_total",
			Help: "Spin animations reaching a terminal state.",
		}, []string{"state"}),
	}
	reg.MustRegister(m.registrations, m.reconciled, m.winnerSaves, m.spins)
	return m
}

func (m *Metrics) Registration(code string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(code).Inc()
}

func (m *Metrics) Reconciled(outcome string) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WinnerSave(code string) {
	if m == nil {
		return
	}
	m.winnerSaves.WithLabelValues(code).Inc()
}

func (m *Metrics) SpinFinished(state string) {
	if m == nil {
		return
	}
	m.spins.WithLabelValues(state).Inc()
}

// Gatherer exposes the underlying registry (tests, custom exporters).
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
