package db

import "errors"

// ErrConnect wraps every failure to establish or prepare a session. It is
// fatal to the specific call and never silently retried.
var ErrConnect = errors.New("connection to database failed")
