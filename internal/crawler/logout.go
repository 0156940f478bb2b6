package crawler

import "strings"

// logoutTokens are substrings that mark a URL as likely to end the session.
var logoutTokens = []string{
	"logout",
	"sign-out",
	"signout",
	"sign_out",
	"exit",
	"quit",
	"disconnect",
	"end-session",
	"endsession",
	"terminate",
}

// LogoutGuard keeps session-ending URLs out of the frontier and remembers
// each one it turned away.
type LogoutGuard struct {
	skipped []string
	seen    map[string]struct{}
}

// NewLogoutGuard creates a guard with an empty skip record.
func NewLogoutGuard() *LogoutGuard {
	return &LogoutGuard{
		skipped: make([]string, 0),
		seen:    make(map[string]struct{}),
	}
}

// ShouldSkip reports whether rawURL contains any logout token,
// case-insensitively.
func (g *LogoutGuard) ShouldSkip(rawURL string) bool {
	return IsLogoutURL(rawURL)
}

// Record adds rawURL to the skip record. It returns false if the URL was
// already recorded.
func (g *LogoutGuard) Record(rawURL string) bool {
	if _, ok := g.seen[rawURL]; ok {
		return false
	}
	g.seen[rawURL] = struct{}{}
	g.skipped = append(g.skipped, rawURL)
	return true
}

// Skipped returns the recorded URLs in first-seen order.
func (g *LogoutGuard) Skipped() []string {
	out := make([]string, len(g.skipped))
	copy(out, g.skipped)
	return out
}

// IsLogoutURL reports whether rawURL contains any logout token.
func IsLogoutURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, token := range logoutTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
