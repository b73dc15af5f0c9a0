// Package check probes a live cluster node: whether it accepts queries,
// which replication role it reports, and what server version it runs.
// The pgherd check command drives these against the configured node.
package check

import (
	"context"
	"time"
)

// Runner executes a sequence of node checks in registration order
type Runner struct {
	checks []CheckFunc
}

// NewRunner creates a runner over the given checks
func NewRunner(checks ...CheckFunc) *Runner {
	return &Runner{checks: checks}
}

// Register appends a check to the run sequence
func (r *Runner) Register(check CheckFunc) {
	r.checks = append(r.checks, check)
}

// RunAll performs every registered check
func (r *Runner) RunAll(ctx context.Context) Response {
	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	for _, checkFunc := range r.checks {
		start := time.Now()
		result := checkFunc(ctx)
		result.Duration = time.Since(start)
		result.LastChecked = start

		response.Checks = append(response.Checks, result)

		// Determine overall status (worst status wins)
		if result.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if result.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}
