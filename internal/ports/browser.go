package ports

import "context"

// Browser opens a page session bound to one URL. Opening is expensive; callers
// reuse the returned page for a whole batch and must Close it.
type Browser interface {
	Open(ctx context.Context, url string) (SearchPage, error)
}

// SearchPage is a live eligibility page. Every method blocks until ctx is done;
// callers bound waits with context.WithTimeout and inspect
// context.DeadlineExceeded to tell a timeout from other failures.
type SearchPage interface {
	// Search clears the player search field, types query and submits it.
	Search(ctx context.Context, query string) error
	// WaitForRows returns once at least one results body row is present.
	WaitForRows(ctx context.Context) error
	// ResultsHTML returns the outer HTML of the results table, or ErrNotFound.
	ResultsHTML(ctx context.Context) (string, error)
	Close() error
}
