// Package primary locates the live writable primary of a replication
// cluster. The registry's stored roles are declarations, not truth:
// after an untold failover the row marked primary may be a standby, or
// gone. Discovery therefore probes candidates in registry order and
// believes only what each node says about itself.
package primary

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/pgherd/pgherd/pkg/db"
	"github.com/pgherd/pgherd/pkg/metrics"
	"github.com/pgherd/pgherd/pkg/registry"
)

// DefaultProbeTimeout bounds a single candidate's connect-plus-probe
// attempt, so one unresponsive node cannot stall discovery.
const DefaultProbeTimeout = 6 * time.Second

// NodeConn is the behaviour discovery needs from a probed candidate
// connection. *pgx.Conn implements it.
type NodeConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

// ConnectFunc dials one discovery candidate.
type ConnectFunc func(ctx context.Context, conninfo string) (NodeConn, error)

// Primary is a discovery winner: an open connection to the node that
// reported itself writable. Ownership of Conn passes to the caller,
// who must close it.
type Primary struct {
	Conn     NodeConn
	NodeID   int
	Conninfo string
}

// FinderConfig configures primary discovery
type FinderConfig struct {
	// ProbeTimeout bounds each candidate's connect-plus-probe attempt
	// (default: DefaultProbeTimeout)
	ProbeTimeout time.Duration

	// Connect dials one candidate. Tests and callers that need
	// instrumented dials swap it out (default: db.Connect)
	Connect ConnectFunc

	// Logger for discovery progress (default: no-op)
	Logger *zap.Logger

	// Metrics registry (default: metrics.DefaultRegistry())
	Metrics *metrics.Registry
}

// Finder runs the primary-discovery protocol over a node registry.
type Finder struct {
	probeTimeout    time.Duration
	connect         ConnectFunc
	logger          *zap.Logger
	metricsRegistry *metrics.Registry
}

// NewFinder creates a Finder, filling unset config fields with defaults
func NewFinder(cfg FinderConfig) *Finder {
	f := &Finder{
		probeTimeout:    cfg.ProbeTimeout,
		connect:         cfg.Connect,
		logger:          cfg.Logger,
		metricsRegistry: cfg.Metrics,
	}

	if f.probeTimeout <= 0 {
		f.probeTimeout = DefaultProbeTimeout
	}
	if f.connect == nil {
		f.connect = dialNode
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.metricsRegistry == nil {
		f.metricsRegistry = metrics.DefaultRegistry()
	}

	return f
}

// Find probes the registered candidates in registry order and returns an
// open connection to the first node that reports itself writable.
//
// A failure to list candidates is the only hard error. Per-candidate
// failures (unreachable node, failed probe) are warnings: the candidate
// is skipped and its connection closed. A run that probes every
// candidate without finding a writable node returns ErrNoPrimary, which
// callers treat as a state, not a failure. Cancelling ctx aborts the
// loop between probes.
func (f *Finder) Find(ctx context.Context, q db.Querier) (*Primary, error) {
	start := time.Now()

	f.logger.Info("retrieving node list for primary discovery")

	candidates, err := registry.PrimaryCandidates(ctx, q)
	if err != nil {
		f.metricsRegistry.RecordDiscovery("error", time.Since(start))
		return nil, fmt.Errorf("failed to retrieve primary candidates: %w", err)
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			f.metricsRegistry.RecordDiscovery("error", time.Since(start))
			return nil, fmt.Errorf("primary discovery aborted: %w", err)
		}

		conn := f.probe(ctx, candidate)
		if conn == nil {
			continue
		}

		f.logger.Info("current primary node found", zap.Int("node_id", candidate.NodeID))
		f.metricsRegistry.RecordDiscovery("found", time.Since(start))
		f.metricsRegistry.SetDiscoveredPrimary(candidate.NodeID)

		return &Primary{
			Conn:     conn,
			NodeID:   candidate.NodeID,
			Conninfo: candidate.Conninfo,
		}, nil
	}

	f.logger.Warn("unable to determine a writable primary node",
		zap.Int("candidates", len(candidates)))
	f.metricsRegistry.RecordDiscovery("none", time.Since(start))
	f.metricsRegistry.SetDiscoveredPrimary(0)

	return nil, ErrNoPrimary
}

// probe dials one candidate and asks whether it is in recovery. It
// returns the open connection when the node is the writable primary and
// nil otherwise; every non-winning connection is closed before probe
// returns, on every path.
func (f *Finder) probe(ctx context.Context, candidate registry.Candidate) NodeConn {
	probeCtx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	f.logger.Info("checking role of node", zap.Int("node_id", candidate.NodeID))

	conn, err := f.connect(probeCtx, candidate.Conninfo)
	if err != nil {
		f.logger.Warn("unable to connect to node",
			zap.Int("node_id", candidate.NodeID),
			zap.Error(err))
		f.metricsRegistry.RecordProbe("connect_failed")
		return nil
	}

	won := false
	defer func() {
		if !won {
			_ = conn.Close(probeCtx)
		}
	}()

	standby, err := db.IsStandby(probeCtx, conn)
	if err != nil {
		f.logger.Warn("unable to retrieve recovery state from node",
			zap.Int("node_id", candidate.NodeID),
			zap.Error(err))
		f.metricsRegistry.RecordProbe("probe_failed")
		return nil
	}

	if standby {
		f.logger.Debug("node is in recovery", zap.Int("node_id", candidate.NodeID))
		f.metricsRegistry.RecordProbe("standby")
		return nil
	}

	won = true
	f.metricsRegistry.RecordProbe("primary")
	return conn
}

func dialNode(ctx context.Context, conninfo string) (NodeConn, error) {
	conn, err := db.Connect(ctx, conninfo)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
