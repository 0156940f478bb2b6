// Package navigation extracts navigation menus from rendered pages and merges
// them into one hierarchy for the whole exploration.
//
// # Extraction
//
// Extractor asks the page for its rendered document and parses it with
// golang.org/x/net/html. Elements are classified into three regions, in this
// order of precedence:
//
//   - breadcrumb: aria-label or class containing "breadcrumb"
//   - sidebar: <aside>, or classes such as "sidebar", "side-nav", "drawer"
//   - main: <nav>, <header>, role="navigation", or classes such as "navbar"
//
// Only anchors whose href is a same-origin path ("/...") and whose text is
// not empty become items. Sidebar list items also collect the links nested
// below them as sub-items.
//
// # Aggregation
//
// Aggregate runs once after the crawl. Menu entries from all pages are
// grouped by label, not href, because the same entry is often rendered with
// slightly different links on different pages. Discovered routes that no
// menu references are collected into a final "Standalone Pages" group.
package navigation
