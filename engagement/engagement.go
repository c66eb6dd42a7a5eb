// Package engagement exposes the public JSON endpoints for like and view
// counters. Requests carry no credentials; abuse is bounded by a per-IP rate
// limiter and clients are expected to suppress repeats on their side.
package engagement

import "database/sql"

// ErrNotFound is returned by a Counter when no post has the given id. It
// aliases sql.ErrNoRows so store errors match without wrapping.
var ErrNotFound = sql.ErrNoRows

// Counter mutates engagement totals and returns the resulting count. Every
// method must be atomic with respect to concurrent callers.
type Counter interface {
	LikePost(id string) (int, error)
	UnlikePost(id string) (int, error)
	ViewPost(id string) (int, error)
}
