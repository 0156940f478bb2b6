// Package browser is the page-navigation capability used by the explorer.
//
// Session and Opener are the narrow interface the crawl loop depends on:
// navigate, collect links, evaluate a script, close. RodOpener implements
// them with go-rod on a local Chromium, and tests substitute a scripted fake.
//
// # Authentication
//
// Logging in is not done here. A persisted storage state (cookies plus
// per-origin localStorage, the format browser-automation tools write after a
// login) is restored into the fresh tab before crawling starts. A profile
// directory that already holds a logged-in browser can be used instead.
//
// # Errors
//
// Page-load failures are returned as *NavigationError with a Kind of
// timeout, network, http, or navigation. They are recoverable. When the
// browser itself stops answering, errors wrap ErrSessionLost, which ends the
// exploration.
package browser
