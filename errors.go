package inkpost

import "database/sql"

// ErrNotFound is returned when a requested post or admin does not exist.
var ErrNotFound = sql.ErrNoRows

// ValidationError reports a rejected input: missing required fields or a
// refused upload. The message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
