package metrics

import (
	"time"
)

// RecordDiscovery records one full primary discovery run
func (r *Registry) RecordDiscovery(result string, duration time.Duration) {
	r.DiscoveryRunsTotal.WithLabelValues(result).Inc()
	r.DiscoveryDuration.Observe(duration.Seconds())
}

// RecordProbe records a single candidate probe during discovery
func (r *Registry) RecordProbe(result string) {
	r.DiscoveryProbesTotal.WithLabelValues(result).Inc()
}

// SetDiscoveredPrimary publishes the node id of the last discovery winner;
// 0 means the last run found none
func (r *Registry) SetDiscoveredPrimary(nodeID int) {
	r.DiscoveryPrimaryNode.Set(float64(nodeID))
}

// RecordRegistryOperation records a node registry operation with its duration
func (r *Registry) RecordRegistryOperation(operation, status string, duration time.Duration) {
	r.RegistryOperationsTotal.WithLabelValues(operation, status).Inc()
	r.RegistryOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetRegisteredNodes updates the registered-node count gauge
func (r *Registry) SetRegisteredNodes(count int) {
	r.RegisteredNodesTotal.Set(float64(count))
}
