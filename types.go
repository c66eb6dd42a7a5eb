package inkpost

import "time"

// Post is the canonical stored representation of one blog post.
// ImageURL and Location are empty strings when unset; the store persists them
// as NULL so "" can be treated as absent everywhere else.
type Post struct {
	ID          string
	Title       string
	Description string
	Content     string
	ImageURL    string
	Likes       int
	Views       int
	Author      string
	Location    string
	CreatedAt   time.Time
}

// PostInput carries the authoring form fields into the workflow.
// Normalization (trimming, the author fallback) happens in the workflow, not
// in the handlers and not in the store.
type PostInput struct {
	Title       string
	Description string
	Content     string
	Author      string
	Location    string
}

// Admin is the single bootstrap credential. It is created once at startup and
// never through a user-facing operation.
type Admin struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ReqContext carries per-request state into user templates: authentication
// status, one-shot flash messages, the active search query, and the CSRF
// token for forms.
type ReqContext struct {
	IsAuthenticated bool
	SearchQuery     string
	CSRFToken       string
	Successes       []string
	Errors          []string
}
