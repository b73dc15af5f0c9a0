package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Discovery Metrics
	DiscoveryRunsTotal   *prometheus.CounterVec
	DiscoveryProbesTotal *prometheus.CounterVec
	DiscoveryDuration    prometheus.Histogram
	DiscoveryPrimaryNode prometheus.Gauge

	// Registry Metrics
	RegistryOperationsTotal   *prometheus.CounterVec
	RegistryOperationDuration *prometheus.HistogramVec
	RegisteredNodesTotal      prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initDiscoveryMetrics()
	r.initRegistryMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
