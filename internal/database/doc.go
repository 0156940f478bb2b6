// Package database provides SQLite-based storage for navscout.
//
// HistoryDB keeps every emitted exploration report, so earlier runs of the
// same application can be listed and printed again. It stores:
//   - One row per run, keyed by a UUID
//   - Route and menu counts for listing without decoding the report
//   - The full report JSON
//
// The history is never read back into a crawl. Each exploration starts from
// an empty frontier.
//
// SQLite comes from modernc.org/sqlite, a CGO-free driver, and runs in WAL
// mode by default.
package database
