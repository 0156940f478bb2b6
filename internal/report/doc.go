// Package report renders exploration reports.
//
// Writers for each output format:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: The report document for tool integration
//   - MarkdownWriter: Tables and a mermaid chart for sharing
//
// Report data structures live in the model package, so a new format never
// changes what an exploration produces.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
