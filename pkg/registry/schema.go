package registry

import (
	"context"
	"fmt"

	"github.com/pgherd/pgherd/pkg/db"
)

// CreateSchema creates the metadata schema and tables. Idempotent, so it
// is safe against a store that already carries them.
//
// upstream_node_id is deliberately not a foreign key: it is a weak
// reference, and records are written in whatever order nodes come up.
func CreateSchema(ctx context.Context, q db.Querier) error {
	schema := `
	CREATE SCHEMA IF NOT EXISTS pgherd;

	CREATE TABLE IF NOT EXISTS pgherd.nodes (
		node_id          INTEGER PRIMARY KEY,
		type             TEXT    NOT NULL CHECK (type IN ('primary', 'standby', 'witness', 'bdr')),
		upstream_node_id INTEGER NULL,
		node_name        TEXT    NOT NULL,
		conninfo         TEXT    NOT NULL,
		slot_name        TEXT    NULL,
		priority         INTEGER NOT NULL DEFAULT 100,
		active           BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_type ON pgherd.nodes(type);

	CREATE TABLE IF NOT EXISTS pgherd.events (
		event_id        BIGSERIAL   PRIMARY KEY,
		node_id         INTEGER     NOT NULL,
		event           TEXT        NOT NULL,
		successful      BOOLEAN     NOT NULL DEFAULT TRUE,
		event_timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		details         TEXT        NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_node_id ON pgherd.events(node_id);
	`

	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create pgherd schema: %w", err)
	}

	return nil
}
