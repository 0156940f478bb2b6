// Package crawler holds the per-run crawl bookkeeping used by the explorer.
//
// # Components
//
//   - Frontier: FIFO queue of absolute URLs waiting to be visited
//   - VisitedSet: routes already dequeued and attempted
//   - RetryState: per-URL failure counts under a RetryPolicy
//   - LogoutGuard: keeps session-ending links out of the frontier
//   - PathFilter: optional ignore/follow glob patterns
//
// None of these types are safe for concurrent use. They are created fresh for
// each exploration and owned by the single crawl loop that drives it.
//
// # Identity
//
// A route is the path component of a URL (see Normalize). The visited set is
// keyed by route, the frontier holds absolute URLs, and IsInternal compares
// origins against the exploration domain, which is the origin of the start
// URL rather than of the login page.
//
// # Usage
//
//	frontier := crawler.NewFrontier(startURL)
//	visited := crawler.NewVisitedSet()
//	for !frontier.Empty() {
//		next, _ := frontier.Dequeue()
//		if visited.Has(next) {
//			continue
//		}
//		visited.Add(next)
//		// navigate...
//	}
package crawler
