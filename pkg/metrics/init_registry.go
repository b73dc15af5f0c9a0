package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRegistryMetrics() {
	r.RegistryOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgherd_registry_operations_total",
			Help: "Total number of node registry operations",
		},
		[]string{"operation", "status"}, // operation: register, update, get_node, ...; status: success, error
	)

	r.RegistryOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pgherd_registry_operation_duration_seconds",
			Help:    "Duration of node registry operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	r.RegisteredNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pgherd_registered_nodes_total",
			Help: "Number of nodes on record in the registry",
		},
	)
}
