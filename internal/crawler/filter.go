package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFilter decides which internal links are followed based on glob
// patterns matched against the URL path.
type PathFilter struct {
	// Ignore patterns skip matching paths, e.g. "/admin/*", "*.pdf".
	Ignore []string

	// Follow patterns, when set, restrict crawling to matching paths.
	Follow []string
}

// Enabled reports whether any pattern is configured.
func (f PathFilter) Enabled() bool {
	return len(f.Ignore) > 0 || len(f.Follow) > 0
}

// Allows reports whether targetURL should be crawled.
//
//  1. If the path matches any Ignore pattern, it is rejected
//  2. If Follow is set and the path matches none, it is rejected
//  3. Otherwise it is allowed
func (f PathFilter) Allows(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.Ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.Follow) > 0 {
		for _, pattern := range f.Follow {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* to match the prefix and everything below it
//
// Examples:
//   - "/admin/*" matches "/admin", "/admin/users/edit"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a separator are tried against the last segment too.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
