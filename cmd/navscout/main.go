// Package main provides the entry point for the navscout CLI.
//
// navscout maps the reachable pages and navigation menus of a web
// application behind a login, starting from a saved browser session.
//
// Usage:
//
//	navscout explore --base-url <login-origin> <start-url>
//	navscout history [domain]
//
// See --help for all available options.
package main

// main is the entry point for navscout.
func main() {
	Execute()
}
