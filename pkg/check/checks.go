package check

import (
	"context"
	"fmt"

	"github.com/pgherd/pgherd/pkg/db"
)

// DefaultMinServerVersion is the oldest server version the tooling
// supports; physical replication slots appeared in 9.4.
const DefaultMinServerVersion = 90400

// ConnectionCheck verifies the node accepts queries at all
func ConnectionCheck(conn db.RowQuerier) CheckFunc {
	return func(ctx context.Context) Check {
		result := Check{
			Name: "connection",
		}

		var one int
		if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		} else {
			result.Status = StatusHealthy
			result.Message = "connected"
		}

		return result
	}
}

// RecoveryCheck reports the node's live replication role
func RecoveryCheck(conn db.RowQuerier) CheckFunc {
	return func(ctx context.Context) Check {
		result := Check{
			Name:    "recovery",
			Details: make(map[string]any),
		}

		standby, err := db.IsStandby(ctx, conn)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}

		result.Details["in_recovery"] = standby
		result.Status = StatusHealthy
		if standby {
			result.Message = "standby (in recovery)"
		} else {
			result.Message = "writable primary"
		}

		return result
	}
}

// ServerVersionCheck verifies the node runs a supported server version
func ServerVersionCheck(conn db.RowQuerier, minVersion int) CheckFunc {
	return func(ctx context.Context) Check {
		result := Check{
			Name:    "server_version",
			Details: make(map[string]any),
		}

		version, display, err := db.ServerVersion(ctx, conn)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}

		result.Details["version_num"] = version
		result.Details["version"] = display

		if version < minVersion {
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("server version %s below supported minimum", display)
		} else {
			result.Status = StatusHealthy
			result.Message = fmt.Sprintf("PostgreSQL %s", display)
		}

		return result
	}
}
