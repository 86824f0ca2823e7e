package router

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters exported at cmd/routed's -metrics-addr, in the
// style of route-beacon/rib-ingester's internal/metrics package.
type Metrics struct {
	Updates     prometheus.Counter
	Withdrawals prometheus.Counter
	NoRoute     prometheus.Counter
	Dumps       prometheus.Counter
}

// NewMetrics builds a fresh, unregistered Metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routed_updates_total",
			Help: "Total update messages processed.",
		}),
		Withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routed_withdrawals_total",
			Help: "Total revoke messages processed.",
		}),
		NoRoute: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routed_no_route_total",
			Help: "Total data packets that failed to find a route.",
		}),
		Dumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routed_dumps_total",
			Help: "Total dump requests served.",
		}),
	}
}

// Register registers m's counters with reg.
func (m *Metrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(m.Updates, m.Withdrawals, m.NoRoute, m.Dumps)
}
