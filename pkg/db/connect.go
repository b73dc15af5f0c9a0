package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgherd/pgherd/pkg/conninfo"
)

// Connect opens a session described by a conninfo string. The connection is
// tagged with ApplicationName unless the descriptor already names an
// application, and synchronous_commit is forced to "local" right after
// connecting unless the descriptor requests a replication-protocol
// connection. On any failure the connection is closed and an
// ErrConnect-wrapped error carrying the driver's diagnostic is returned;
// callers never receive a half-prepared session.
func Connect(ctx context.Context, connString string) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	if cfg.RuntimeParams["application_name"] == "" {
		cfg.RuntimeParams["application_name"] = ApplicationName
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	// Replication-protocol sessions reject ordinary SET statements.
	if cfg.RuntimeParams["replication"] == "" {
		if err := SetConfig(ctx, conn, "synchronous_commit", "local"); err != nil {
			_ = conn.Close(ctx)
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}
	}

	return conn, nil
}

// ConnectByParams serializes a parameter list and connects with it.
func ConnectByParams(ctx context.Context, params *conninfo.ParamList) (*pgx.Conn, error) {
	return Connect(ctx, params.String())
}

// ConnectAsUser connects with the given conninfo string but as a different
// user, dropping any application_name the descriptor carries so the session
// is attributed to this tool.
func ConnectAsUser(ctx context.Context, connString, user string) (*pgx.Conn, error) {
	params, err := conninfo.Parse(connString, true)
	if err != nil {
		return nil, err
	}
	params.Set("user", user)
	return ConnectByParams(ctx, params)
}
