// Package metrics exposes operation counters for monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set holds the engine's Prometheus collectors.
type Set struct {
	OperationsApplied *prometheus.CounterVec
	OperationsFailed  *prometheus.CounterVec
	TokensMinted      prometheus.Counter
	SettlementVolume  prometheus.Counter
	EventsPublished   prometheus.Counter
}

// NewSet registers the collectors with the given registerer.
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		OperationsApplied: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "voucherd",
			Name:      "operations_applied_total",
			Help:      "State-changing operations applied, by operation.",
		}, []string{"op"}),
		OperationsFailed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "voucherd",
			Name:      "operations_failed_total",
			Help:      "State-changing operations rejected, by operation.",
		}, []string{"op"}),
		TokensMinted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "voucherd",
			Name:      "tokens_minted_total",
			Help:      "Total voucher units minted across all token ids.",
		}),
		SettlementVolume: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "voucherd",
			Name:      "settlement_volume_total",
			Help:      "Total payment-asset volume settled through purchases.",
		}),
		EventsPublished: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "voucherd",
			Name:      "audit_events_published_total",
			Help:      "Audit events published to subscribers.",
		}),
	}
}
