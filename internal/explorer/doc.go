// Package explorer drives one exploration of an authenticated web
// application and produces its report.
//
// An Explorer moves through four states and never goes back:
//
//	INIT -> CRAWLING -> AGGREGATING -> DONE
//
// During CRAWLING it visits pages breadth-first from the start URL inside a
// single browser session. Each page's internal links are resolved against
// the exploration domain (the origin of the start URL). Logout links are
// recorded and skipped, and the rest pass the path filter before they are
// queued. Failed navigations are retried with a fixed backoff up to the
// configured limit, then recorded as failed routes. The crawl stops when the
// frontier drains or when MaxPages routes have been discovered.
//
// The session is closed before AGGREGATING, where the per-page navigation
// extracts are merged once into the menu hierarchy and the report is built.
//
// # Errors
//
//   - ErrConfiguration: invalid settings, returned before any browser work
//   - ErrSession: the session could not be opened or was lost; no report
//   - ErrAlreadyRun: Explore was called twice
//
// If the context is cancelled, Explore returns the partial report together
// with the context error and marks the summary as cancelled.
package explorer
