package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsoluteURL is returned when an origin is requested for a URL without
// a scheme and host.
var ErrNotAbsoluteURL = errors.New("URL has no scheme or host")

// Normalize reduces a URL to its route: the path component only, with query
// and fragment discarded. An empty path becomes "/". Normalize is idempotent.
//
// Trailing slashes are kept, so "/dashboard" and "/dashboard/" are distinct
// routes.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		// Fall back to cutting at the first query or fragment marker.
		path := rawURL
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return "/"
		}
		return path
	}

	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// Origin returns the lowercase scheme://host[:port] of an absolute URL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q: %w", rawURL, ErrNotAbsoluteURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

// IsInternal reports whether rawURL's origin equals domain.
// Unparseable and relative URLs are never internal.
func IsInternal(rawURL, domain string) bool {
	origin, err := Origin(rawURL)
	if err != nil {
		return false
	}
	want, err := Origin(domain)
	if err != nil {
		return false
	}
	return origin == want
}

// Resolve turns href into an absolute URL anchored at domain, dropping the
// fragment. It returns false for hrefs that do not point at a page, such as
// javascript:, mailto:, tel:, data: or a bare "#".
func Resolve(href, domain string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	base, err := url.Parse(domain)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Path == "" {
		resolved.Path = "/"
	}
	return resolved.String(), true
}
