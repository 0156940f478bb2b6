package browser

import (
	"context"
	"time"
)

// Session is the page-navigation capability the explorer drives. A session
// owns one browser tab and is used by one goroutine at a time.
type Session interface {
	// Navigate loads url and waits for the page to settle. Failures are
	// returned as *NavigationError, or wrap ErrSessionLost when the browser
	// itself is gone.
	Navigate(ctx context.Context, url string) error

	// CollectLinks returns the absolute hrefs of every anchor in the
	// current page.
	CollectLinks(ctx context.Context) ([]string, error)

	// Evaluate runs script in the current page and returns its result
	// encoded as JSON.
	Evaluate(ctx context.Context, script string) ([]byte, error)

	// Close releases the tab and the browser behind it.
	Close() error
}

// Opener creates sessions.
type Opener interface {
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}

// OpenOptions configures a new session.
type OpenOptions struct {
	// AuthStatePath points to a persisted storage state (cookies and
	// per-origin localStorage) to restore before crawling. Empty means
	// start unauthenticated.
	AuthStatePath string

	// Timeout bounds each navigation and script evaluation.
	Timeout time.Duration
}
