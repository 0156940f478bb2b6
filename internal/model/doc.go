// Package model defines the data structures shared across navscout.
//
//   - NavPageExtract: the navigation snapshot of one page
//   - MenuGroup: one aggregated menu entry across all pages
//   - FailedRoute: a URL that exhausted its retries
//   - Report: the result document of a run
//
// Keeping these in their own package lets the crawler, navigation, explorer,
// report, and database packages share them without import cycles. All types
// serialize to the JSON report schema.
package model
