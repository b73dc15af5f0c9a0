package primary

import "errors"

// Discovery outcomes
var (
	// ErrNoPrimary means every candidate was probed and none reported
	// itself writable. Legitimate during an election gap or while a
	// failover is still settling, so callers branch on it rather than
	// treating it as a query failure.
	ErrNoPrimary = errors.New("no writable primary found among registered nodes")
)
