package observability

import (
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Route outcomes recorded by RoutesTotal.
const (
	OutcomeDelivered = "delivered"
	OutcomeUnwired   = "unwired"
)

// Metrics holds the Prometheus instruments of a lattice process.
type Metrics struct {
	CouplingsTotal  prometheus.Counter
	RoutesTotal     *prometheus.CounterVec
	DeliveriesTotal prometheus.Counter
	StoreOpsTotal   *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// NewMetrics creates the instruments and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CouplingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_couplings_total",
			Help: "Total number of coupling occurrences added to networks",
		}),
		RoutesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_routes_total",
				Help: "Total number of route lookups by outcome",
			},
			[]string{"outcome"},
		),
		DeliveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_deliveries_total",
			Help: "Total number of delivery events synthesized by routers",
		}),
		StoreOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_store_operations_total",
				Help: "Total number of snapshot store operations",
			},
			[]string{"op", "result"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lattice_store_operation_duration_seconds",
				Help:    "Duration of snapshot store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.CouplingsTotal, m.RoutesTotal, m.DeliveriesTotal, m.StoreOpsTotal, m.StoreDuration)
	}
	return m
}

// Hooks returns network hooks that record couplings and routes.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCouple: func(from, to domain.Node) {
			m.CouplingsTotal.Inc()
		},
		OnRoute: func(from domain.Node, deliveries int) {
			if deliveries == 0 {
				m.RoutesTotal.WithLabelValues(OutcomeUnwired).Inc()
				return
			}
			m.RoutesTotal.WithLabelValues(OutcomeDelivered).Inc()
			m.DeliveriesTotal.Add(float64(deliveries))
		},
	}
}
