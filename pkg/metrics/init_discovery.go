package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDiscoveryMetrics() {
	r.DiscoveryRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgherd_discovery_runs_total",
			Help: "Total number of primary discovery runs",
		},
		[]string{"result"}, // found, none, error
	)

	r.DiscoveryProbesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgherd_discovery_probes_total",
			Help: "Total number of candidate probes during discovery",
		},
		[]string{"result"}, // primary, standby, connect_failed, probe_failed
	)

	r.DiscoveryDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pgherd_discovery_duration_seconds",
			Help:    "Duration of primary discovery runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
	)

	r.DiscoveryPrimaryNode = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pgherd_discovery_primary_node",
			Help: "Node id of the last discovered primary (0 when none found)",
		},
	)
}
