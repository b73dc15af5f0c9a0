// Package registry maintains the catalogue of replication-cluster nodes
// kept inside the cluster's own metadata store: one row per node in
// pgherd.nodes plus an append-only event log in pgherd.events. All
// operations run over a caller-supplied connection into the store; the
// package holds no connection state of its own.
//
// The registry records what operators declared, not what is currently
// true. Stored roles go stale after an untold failover, which is why
// primary discovery probes live nodes instead of trusting the type
// column (see package primary).
package registry

import (
	"fmt"

	"github.com/pgherd/pgherd/pkg/db"
)

// NodeType classifies a registered node's replication role.
type NodeType string

const (
	NodeTypePrimary NodeType = "primary"
	NodeTypeStandby NodeType = "standby"
	NodeTypeWitness NodeType = "witness"
	NodeTypeBDR     NodeType = "bdr"
)

// ParseNodeType validates an operator-supplied or stored role string.
// Anything outside the closed set is an error, never a default.
func ParseNodeType(s string) (NodeType, error) {
	switch t := NodeType(s); t {
	case NodeTypePrimary, NodeTypeStandby, NodeTypeWitness, NodeTypeBDR:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
}

// NoUpstreamNode marks a record registered without an explicit upstream.
// Standbys written with it are attached to the current primary, if one
// is registered, at write time.
const NoUpstreamNode = 0

// NodeRecord is one row of the node registry.
//
// IsReady, IsVisible and XLogLocation are runtime observations carried
// between checks by monitoring code. They are never persisted and come
// back as their zero values from every read.
type NodeRecord struct {
	ID         int
	Type       NodeType
	UpstreamID int
	Name       string
	Conninfo   string
	SlotName   string
	Priority   int
	Active     bool

	IsReady      bool
	IsVisible    bool
	XLogLocation db.LSN
}

// Validate checks the fields a caller must supply before a write.
func (n *NodeRecord) Validate() error {
	if n.ID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNodeID, n.ID)
	}
	if n.UpstreamID < 0 {
		return fmt.Errorf("%w: upstream node %d", ErrInvalidNodeID, n.UpstreamID)
	}
	if n.Name == "" {
		return ErrMissingNodeName
	}
	if n.Conninfo == "" {
		return ErrMissingConninfo
	}
	if _, err := ParseNodeType(string(n.Type)); err != nil {
		return err
	}
	return nil
}

// Candidate is the projection of a registry row handed to primary
// discovery: just enough to dial the node and report who won.
type Candidate struct {
	NodeID   int
	Conninfo string
}
