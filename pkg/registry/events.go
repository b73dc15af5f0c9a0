package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/pgherd/pgherd/pkg/db"
)

// Event is one entry in the append-only cluster event log: a thing that
// happened to a node, when, and whether it worked.
type Event struct {
	ID         int64
	NodeID     int
	Event      string
	Successful bool
	Timestamp  time.Time
	Details    string
}

// CreateEvent appends to the event log. The returned Event carries the
// server-assigned id and timestamp.
func CreateEvent(ctx context.Context, q db.Querier, nodeID int, event string, successful bool, details string) (*Event, error) {
	query := `
		INSERT INTO pgherd.events (node_id, event, successful, details)
		VALUES ($1, $2, $3, $4)
		RETURNING event_id, event_timestamp
	`

	record := &Event{
		NodeID:     nodeID,
		Event:      event,
		Successful: successful,
		Details:    details,
	}

	err := q.QueryRow(ctx, query,
		nodeID,
		event,
		successful,
		nullableString(details),
	).Scan(&record.ID, &record.Timestamp)

	if err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	return record, nil
}

// GetRecentEvents retrieves the newest entries of the event log, most
// recent first.
func GetRecentEvents(ctx context.Context, q db.Querier, limit int) ([]Event, error) {
	query := `
		SELECT event_id, node_id, event, successful, event_timestamp, details
		FROM pgherd.events
		ORDER BY event_timestamp DESC, event_id DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event   Event
			details *string
		)
		err := rows.Scan(
			&event.ID,
			&event.NodeID,
			&event.Event,
			&event.Successful,
			&event.Timestamp,
			&details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if details != nil {
			event.Details = *details
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
