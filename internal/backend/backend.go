// Package backend defines the tracker-agnostic interface for issue
// operations. The sync engine and commands never import a tracker SDK
// directly.
package backend

import "context"

// Issue states as reported by the tracker.
const (
	StateOpen    = "open"
	StateClosed  = "closed"
	StateUnknown = "unknown"
)

// Issue is a tracked unit of work in the backend.
type Issue struct {
	ID     int64
	Number int
	Title  string
	Body   string
	State  string // StateOpen, StateClosed or StateUnknown
}

// Backend is the capability set a tracker must provide.
// Production clients and test doubles both implement it.
type Backend interface {
	// Create constructs a new issue and returns it with its assigned number.
	Create(ctx context.Context, title, body string, labels []string) (Issue, error)

	// Update overwrites title, body and labels on an existing issue.
	// Fails if the number does not exist.
	Update(ctx context.Context, number int, title, body string, labels []string) (Issue, error)

	// Get returns a single issue by number.
	Get(ctx context.Context, number int) (Issue, error)

	// List returns all issues in the repository.
	List(ctx context.Context) ([]Issue, error)
}
