package registry

import "errors"

// Lookup errors
var (
	ErrNotFound = errors.New("node record not found")
)

// Validation errors
var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrInvalidNodeID   = errors.New("node id must be a positive integer")
	ErrMissingNodeName = errors.New("node name cannot be empty")
	ErrMissingConninfo = errors.New("node conninfo cannot be empty")
)
