// Package db establishes PostgreSQL sessions and runs the low-level probes
// the cluster tooling is built on.
//
// Connections opened here carry a fixed client identification
// (application_name) so server logs can attribute sessions to the tool, and
// have synchronous_commit forced to "local" so management writes never block
// on remote replica acknowledgment. Query helpers accept narrow interfaces
// satisfied by *pgx.Conn, pgx.Tx and *pgxpool.Pool alike.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ApplicationName identifies this tool's sessions in server logs. It is
// applied to every outgoing connection that does not already carry an
// application_name of its own.
const ApplicationName = "pgherd"

// Execer runs statements that return no rows.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RowQuerier runs single-row queries.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the full query surface the registry layer needs. *pgx.Conn,
// pgx.Tx and *pgxpool.Pool all satisfy it.
type Querier interface {
	Execer
	RowQuerier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
