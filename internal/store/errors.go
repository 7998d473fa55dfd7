package store

import "errors"

// ErrNoRun is returned when a run ID is not in the database.
var ErrNoRun = errors.New("run not found")
