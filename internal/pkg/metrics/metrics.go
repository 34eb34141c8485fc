// Package metrics holds the Prometheus collectors for the trade core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry         *prometheus.Registry
	TradeTransitions *prometheus.CounterVec
	RewardsGranted   *prometheus.CounterVec
	RoomsDeleted     *prometheus.CounterVec
	MessagesSwept    prometheus.Counter
}

// New builds collectors on a private registry so tests can create as many as they like.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TradeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swappay",
			Name:      "trade_transitions_total",
			Help:      "Trade agreement state transitions by target state.",
		}, []string{"state"}),
		RewardsGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swappay",
			Name:      "rewards_granted_total",
			Help:      "Swap-coin bonuses granted by reason.",
		}, []string{"bonus"}),
		RoomsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swappay",
			Name:      "rooms_deleted_total",
			Help:      "Chat rooms destroyed by reason.",
		}, []string{"reason"}),
		MessagesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swappay",
			Name:      "messages_swept_total",
			Help:      "Messages removed by the retention sweep.",
		}),
	}

	m.Registry.MustRegister(
		m.TradeTransitions,
		m.RewardsGranted,
		m.RoomsDeleted,
		m.MessagesSwept,
		collectors.NewGoCollector(),
	)
	return m
}
