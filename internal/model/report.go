package model

import "time"

// ErrorType classifies why a route failed.
type ErrorType string

const (
	// ErrorTypeTimeout means navigation did not finish within the timeout.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeNetwork covers DNS, connection, and TLS failures.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeHTTP means the document loaded with an HTTP error status.
	ErrorTypeHTTP ErrorType = "http"

	// ErrorTypeNavigation is any other page-load failure.
	ErrorTypeNavigation ErrorType = "navigation"
)

// FailedRoute is a URL that still failed after every retry.
type FailedRoute struct {
	URL            string    `json:"url"`
	NormalizedPath string    `json:"normalizedPath"`
	Error          string    `json:"error"`
	ErrorType      ErrorType `json:"errorType"`
	RetryAttempts  int       `json:"retryAttempts"`
	Timestamp      time.Time `json:"timestamp"`
}

// Configuration echoes the settings a run was made with.
type Configuration struct {
	MaxPages             int   `json:"maxPages"`
	MaxRetries           int   `json:"maxRetries"`
	RetryDelayMs         int64 `json:"retryDelayMs"`
	TimeoutMs            int64 `json:"timeoutMs"`
	Headless             bool  `json:"headless"`
	AuthStateProvided    bool  `json:"authStateProvided"`
	LogoutProtection     bool  `json:"logoutProtection"`
	NavigationExtraction bool  `json:"navigationExtraction"`
	PatternFiltering     bool  `json:"patternFiltering"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	TotalDiscovered    int       `json:"totalDiscovered"`
	TotalFailed        int       `json:"totalFailed"`
	TotalSkippedLogout int       `json:"totalSkippedLogout"`
	TotalAttempted     int       `json:"totalAttempted"`
	TotalMenus         int       `json:"totalMenus"`
	Cancelled          bool      `json:"cancelled"`
	DurationMs         int64     `json:"durationMs"`
	Timestamp          time.Time `json:"timestamp"`
}

// Report is the result of one exploration run. It is the document consumed
// by downstream route analysis, so field names are part of the contract.
type Report struct {
	BaseURL             string             `json:"baseUrl"`
	ExplorationDomain   string             `json:"explorationDomain"`
	DiscoveredRoutes    []string           `json:"discoveredRoutes"`
	FailedRoutes        []FailedRoute      `json:"failedRoutes"`
	SkippedLogoutRoutes []string           `json:"skippedLogoutRoutes"`
	NavigationStructure []MenuGroup        `json:"navigationStructure"`
	NavigationMetadata  NavigationMetadata `json:"navigationMetadata"`
	Configuration       Configuration      `json:"configuration"`
	Summary             Summary            `json:"summary"`
}

// NewReport creates a report with empty, non-nil collections so the JSON
// always carries arrays rather than null.
func NewReport(baseURL, explorationDomain string) *Report {
	return &Report{
		BaseURL:             baseURL,
		ExplorationDomain:   explorationDomain,
		DiscoveredRoutes:    make([]string, 0),
		FailedRoutes:        make([]FailedRoute, 0),
		SkippedLogoutRoutes: make([]string, 0),
		NavigationStructure: make([]MenuGroup, 0),
	}
}

// Summarize fills Summary counts from the collections.
func (r *Report) Summarize(started, finished time.Time, cancelled bool) {
	r.Summary = Summary{
		TotalDiscovered:    len(r.DiscoveredRoutes),
		TotalFailed:        len(r.FailedRoutes),
		TotalSkippedLogout: len(r.SkippedLogoutRoutes),
		TotalAttempted:     len(r.DiscoveredRoutes) + len(r.FailedRoutes),
		TotalMenus:         r.NavigationMetadata.TotalMenus,
		Cancelled:          cancelled,
		DurationMs:         finished.Sub(started).Milliseconds(),
		Timestamp:          finished.UTC(),
	}
}

// HasFailures reports whether any route failed.
func (r *Report) HasFailures() bool {
	return len(r.FailedRoutes) > 0
}
