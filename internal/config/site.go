package config

import (
	"strings"
	"time"
)

// SiteConfig holds configuration for a single exploration domain.
type SiteConfig struct {
	// AuthState is the path to a persisted browser storage state file.
	AuthState string `yaml:"authState,omitempty"`

	// BaseURL overrides the authentication origin recorded in the report.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// MaxPages overrides the global page budget. Zero keeps the global value.
	MaxPages int `yaml:"maxPages,omitempty"`

	// MaxRetries overrides the retry count. A pointer distinguishes an
	// explicit zero from an unset value.
	MaxRetries *int `yaml:"maxRetries,omitempty"`

	// RetryDelay overrides the retry backoff (e.g. "5s").
	RetryDelay time.Duration `yaml:"retryDelay,omitempty"`

	// Timeout overrides the navigation timeout (e.g. "90s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// IgnorePatterns are URL path globs whose links are not followed.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict crawling to matching paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the navscout configuration file.
type File struct {
	// Sites maps exploration origins (e.g. "https://app.example.com") to
	// their site-specific configuration.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for an exploration origin,
// merged over the defaults. The lookup ignores a trailing slash and case.
func (cf *File) GetSiteConfig(origin string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.lookup(origin)
	if !ok {
		return result
	}

	if site.AuthState != "" {
		result.AuthState = site.AuthState
	}
	if site.BaseURL != "" {
		result.BaseURL = site.BaseURL
	}
	if site.MaxPages != 0 {
		result.MaxPages = site.MaxPages
	}
	if site.MaxRetries != nil {
		result.MaxRetries = site.MaxRetries
	}
	if site.RetryDelay != 0 {
		result.RetryDelay = site.RetryDelay
	}
	if site.Timeout != 0 {
		result.Timeout = site.Timeout
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}

	return result
}

func (cf *File) lookup(origin string) (SiteConfig, bool) {
	want := strings.TrimSuffix(strings.ToLower(origin), "/")
	for key, site := range cf.Sites {
		if strings.TrimSuffix(strings.ToLower(key), "/") == want {
			return site, true
		}
	}
	return SiteConfig{}, false
}
