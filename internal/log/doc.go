// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler masks sensitive information before it reaches the
// underlying handler:
//   - cookies, authorization headers, tokens, and session identifiers
//   - browser storage restored from a persisted authentication state
//   - one-time codes and tokens carried in the query string of logged URLs
//
// A crawler of authenticated applications logs a lot of URLs and session
// material, so masking applies even in verbose mode.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true)
//	logger.Info("navigated", "url", "https://app.example.com/cb?code=abc")
//	// url=https://app.example.com/cb?code=***REDACTED***
package log
