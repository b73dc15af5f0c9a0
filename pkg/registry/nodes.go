package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgherd/pgherd/pkg/db"
)

// GetNodeRecord retrieves the registry row for one node. Returns
// ErrNotFound when the node was never registered.
func GetNodeRecord(ctx context.Context, q db.Querier, nodeID int) (*NodeRecord, error) {
	query := `
		SELECT node_id, type, upstream_node_id, node_name, conninfo, slot_name, priority, active
		FROM pgherd.nodes
		WHERE node_id = $1
	`

	record, err := scanNodeRecord(q.QueryRow(ctx, query, nodeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node record: %w", err)
	}

	return record, nil
}

// GetAllNodeRecords retrieves every registered node, ordered by node id.
func GetAllNodeRecords(ctx context.Context, q db.Querier) ([]NodeRecord, error) {
	query := `
		SELECT node_id, type, upstream_node_id, node_name, conninfo, slot_name, priority, active
		FROM pgherd.nodes
		ORDER BY node_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list node records: %w", err)
	}
	defer rows.Close()

	var records []NodeRecord
	for rows.Next() {
		record, err := scanNodeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating node records: %w", err)
	}

	return records, nil
}

// GetPrimaryNodeID returns the id of the node the registry has on record
// as the active primary. This is the trust-the-registry fast path: after
// an untold failover the stored role can be wrong, so anything that needs
// the live primary must verify with the resolver instead.
func GetPrimaryNodeID(ctx context.Context, q db.Querier) (int, error) {
	query := `
		SELECT node_id
		FROM pgherd.nodes
		WHERE type = 'primary' AND active IS TRUE
	`

	var nodeID int
	err := q.QueryRow(ctx, query).Scan(&nodeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: no active primary registered", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get primary node id: %w", err)
	}

	return nodeID, nil
}

// CreateNodeRecord inserts a new registry row. A standby registered with
// NoUpstreamNode is attached to the currently registered primary.
func CreateNodeRecord(ctx context.Context, q db.Querier, record *NodeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	upstream, err := resolveUpstreamID(ctx, q, record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pgherd.nodes (node_id, type, upstream_node_id, node_name, conninfo, slot_name, priority, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = q.Exec(ctx, query,
		record.ID,
		string(record.Type),
		upstream,
		record.Name,
		record.Conninfo,
		nullableString(record.SlotName),
		record.Priority,
		record.Active,
	)

	if err != nil {
		return fmt.Errorf("failed to create node record: %w", err)
	}

	return nil
}

// UpdateNodeRecord rewrites the full registry row for record.ID. Returns
// ErrNotFound when the node was never registered. Upstream resolution is
// identical to CreateNodeRecord.
func UpdateNodeRecord(ctx context.Context, q db.Querier, record *NodeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	upstream, err := resolveUpstreamID(ctx, q, record)
	if err != nil {
		return err
	}

	query := `
		UPDATE pgherd.nodes
		SET type = $2, upstream_node_id = $3, node_name = $4, conninfo = $5,
		    slot_name = $6, priority = $7, active = $8
		WHERE node_id = $1
	`

	result, err := q.Exec(ctx, query,
		record.ID,
		string(record.Type),
		upstream,
		record.Name,
		record.Conninfo,
		nullableString(record.SlotName),
		record.Priority,
		record.Active,
	)

	if err != nil {
		return fmt.Errorf("failed to update node record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: node %d", ErrNotFound, record.ID)
	}

	return nil
}

// PrimaryCandidates returns the nodes worth probing during primary
// discovery, best candidate first: active nodes before inactive, the
// registry-declared primary before standbys, then ascending priority
// and node id. Witnesses carry no data and are never candidates.
func PrimaryCandidates(ctx context.Context, q db.Querier) ([]Candidate, error) {
	query := `
		SELECT node_id, conninfo
		FROM pgherd.nodes
		WHERE type != 'witness'
		ORDER BY active DESC,
		         CASE WHEN type = 'primary' THEN 1 ELSE 2 END,
		         priority,
		         node_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.NodeID, &c.Conninfo); err != nil {
			return nil, fmt.Errorf("failed to scan primary candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary candidates: %w", err)
	}

	return candidates, nil
}

// resolveUpstreamID decides what upstream_node_id to store. An explicit
// upstream is stored as given; a standby without one attaches to the
// currently registered primary; everything else stores NULL. nil means
// NULL. No primary registered yet is not an error: the column stays NULL
// until a later update.
func resolveUpstreamID(ctx context.Context, q db.Querier, record *NodeRecord) (*int, error) {
	if record.UpstreamID != NoUpstreamNode {
		upstream := record.UpstreamID
		return &upstream, nil
	}

	if record.Type != NodeTypeStandby {
		return nil, nil
	}

	primaryID, err := GetPrimaryNodeID(ctx, q)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &primaryID, nil
}

func scanNodeRecord(row pgx.Row) (*NodeRecord, error) {
	var (
		record   NodeRecord
		nodeType string
		upstream *int
		slotName *string
	)

	err := row.Scan(
		&record.ID,
		&nodeType,
		&upstream,
		&record.Name,
		&record.Conninfo,
		&slotName,
		&record.Priority,
		&record.Active,
	)
	if err != nil {
		return nil, err
	}

	record.Type, err = ParseNodeType(nodeType)
	if err != nil {
		return nil, err
	}
	if upstream != nil {
		record.UpstreamID = *upstream
	}
	if slotName != nil {
		record.SlotName = *slotName
	}

	return &record, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
