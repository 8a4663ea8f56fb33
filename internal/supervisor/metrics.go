package supervisor

import "github.com/prometheus/client_golang/prometheus"

var (
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchmux_checks_total",
			Help: "Total number of supervisory checks, by result.",
		},
		[]string{"result"},
	)

	expiredNodesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "watchmux_expired_nodes_total",
			Help: "Total number of nodes reported expired by detecting checks.",
		},
	)

	latched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchmux_latched",
			Help: "Whether the registry is latched in the expired state (0 or 1).",
		},
	)
)

func init() {
	prometheus.MustRegister(checksTotal)
	prometheus.MustRegister(expiredNodesTotal)
	prometheus.MustRegister(latched)
}
