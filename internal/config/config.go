package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxPages is the maximum number of pages discovered per run.
	// Failed pages do not count against this budget.
	DefaultMaxPages = 50

	// DefaultMaxRetries is how many times a failing navigation is re-queued
	// before the URL is recorded as failed.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the fixed backoff before a failed URL is re-queued.
	DefaultRetryDelay = 3 * time.Second

	// DefaultTimeout bounds a single page navigation or DOM evaluation.
	// Authenticated back-office applications are often slow to render, so this
	// is on the order of minutes rather than seconds.
	DefaultTimeout = 2 * time.Minute

	// DefaultViewportWidth and DefaultViewportHeight size the headless window.
	// Some applications collapse the sidebar below a desktop width.
	DefaultViewportWidth  = 1440
	DefaultViewportHeight = 900

	// AppName is the application name used for XDG directory paths.
	AppName = "navscout"
)

// Config holds all configuration options for navscout.
// It is populated from CLI flags and the optional config file, then passed
// down explicitly; nothing reads configuration from global state.
type Config struct {
	// BaseURL is the authentication origin. It is only used for bookkeeping
	// in the report; crawling is anchored at the origin of StartURL.
	BaseURL string

	// StartURL is the post-login page where exploration begins.
	// Its origin becomes the exploration domain.
	StartURL string

	// AuthStatePath points to a persisted browser storage state (cookies and
	// localStorage) produced by a separate login step. Empty means none.
	AuthStatePath string

	// MaxPages is the maximum number of discovered routes.
	MaxPages int

	// MaxRetries is the number of retries for a failing navigation.
	// Zero means every URL gets exactly one attempt.
	MaxRetries int

	// RetryDelay is the backoff between a failure and its re-queue.
	RetryDelay time.Duration

	// Timeout bounds each navigation and DOM evaluation.
	Timeout time.Duration

	// Headless runs the browser without a window.
	Headless bool

	// BrowserBin is an explicit Chromium binary. Empty uses launcher lookup.
	BrowserBin string

	// ProfileDir is a Chromium user data directory to reuse an existing
	// logged-in browser profile.
	ProfileDir string

	// ViewportWidth and ViewportHeight size the browser page.
	ViewportWidth  int
	ViewportHeight int

	// IgnorePatterns are glob path patterns whose links are never followed.
	IgnorePatterns []string

	// FollowPatterns restrict crawling to matching paths when non-empty.
	FollowPatterns []string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// JSONReport selects JSON report output.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// ReportFile is the report destination. Empty writes to stdout.
	ReportFile string

	// SaveHistory stores the emitted report in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxPages:       DefaultMaxPages,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		Timeout:        DefaultTimeout,
		Headless:       true,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
		SaveHistory:    true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for navscout.
// On Linux: ~/.local/share/navscout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for navscout.
// On Linux: ~/.config/navscout
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if !isAbsoluteHTTP(c.StartURL) {
		return ErrInvalidStartURL
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if !isAbsoluteHTTP(c.BaseURL) {
		return ErrInvalidBaseURL
	}

	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ApplySite overlays a site configuration onto c.
// Only non-zero site values are applied; callers re-apply explicit CLI flags
// afterwards so that the command line always wins.
func (c *Config) ApplySite(site SiteConfig) {
	if site.AuthState != "" {
		c.AuthStatePath = site.AuthState
	}
	if site.BaseURL != "" {
		c.BaseURL = site.BaseURL
	}
	if site.MaxPages > 0 {
		c.MaxPages = site.MaxPages
	}
	if site.MaxRetries != nil {
		c.MaxRetries = *site.MaxRetries
	}
	if site.RetryDelay > 0 {
		c.RetryDelay = site.RetryDelay
	}
	if site.Timeout > 0 {
		c.Timeout = site.Timeout
	}
	if len(site.IgnorePatterns) > 0 {
		c.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		c.FollowPatterns = site.FollowPatterns
	}
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
