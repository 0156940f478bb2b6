package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/nao1215/navscout/internal/browser"
	"github.com/nao1215/navscout/internal/config"
	"github.com/nao1215/navscout/internal/crawler"
	"github.com/nao1215/navscout/internal/model"
	"github.com/nao1215/navscout/internal/navigation"
)

// State is the lifecycle stage of an Explorer.
type State string

const (
	// StateInit is the state before Explore is called.
	StateInit State = "INIT"

	// StateCrawling is the breadth-first visit of pages.
	StateCrawling State = "CRAWLING"

	// StateAggregating is the single merge of navigation extracts.
	StateAggregating State = "AGGREGATING"

	// StateDone is terminal. An explorer is never reused.
	StateDone State = "DONE"
)

// Settings are the inputs of one exploration.
type Settings struct {
	// BaseURL is the authentication origin. It is only echoed in the report.
	BaseURL string

	// StartURL is the post-login page the crawl starts from. Its origin is
	// the exploration domain.
	StartURL string

	// AuthStatePath is an optional persisted storage state to restore.
	AuthStatePath string

	// MaxPages caps the number of discovered routes.
	MaxPages int

	// MaxRetries is the number of retries per failing URL.
	MaxRetries int

	// RetryDelay is the backoff before a failed URL is re-queued.
	RetryDelay time.Duration

	// Timeout bounds each navigation and evaluation. Zero selects the
	// default.
	Timeout time.Duration

	// Headless is echoed in the report configuration.
	Headless bool

	// IgnorePatterns and FollowPatterns filter internal links by path.
	IgnorePatterns []string
	FollowPatterns []string
}

// PageExtractor reads the navigation structure of the current page.
type PageExtractor interface {
	Extract(ctx context.Context, page navigation.Evaluator, currentURL string) (*model.NavPageExtract, error)
}

// Explorer maps the reachable pages of an authenticated application.
type Explorer struct {
	opener    browser.Opener
	settings  Settings
	extractor PageExtractor
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   State
	started bool
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Explorer) {
		e.logger = logger
	}
}

// WithExtractor replaces the navigation extractor.
func WithExtractor(extractor PageExtractor) Option {
	return func(e *Explorer) {
		e.extractor = extractor
	}
}

// withClock sets the time source.
func withClock(now func() time.Time) Option {
	return func(e *Explorer) {
		e.now = now
	}
}

// New creates an explorer that opens its session through opener.
func New(opener browser.Opener, settings Settings, opts ...Option) *Explorer {
	e := &Explorer{
		opener:   opener,
		settings: settings,
		logger:   slog.Default(),
		now:      time.Now,
		state:    StateInit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.extractor == nil {
		e.extractor = navigation.NewExtractor(navigation.WithLogger(e.logger))
	}
	return e
}

// State returns the current lifecycle stage.
func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Explorer) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// begin claims the explorer for a run. It fails if a run already started.
func (e *Explorer) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return false
	}
	e.started = true
	return true
}

// Explore runs the exploration and returns its report.
//
// The browser session is opened once and always closed before aggregation,
// whatever happens during the crawl. If ctx is cancelled, the report built
// from the pages gathered so far is returned together with ctx.Err(). A
// lost session is fatal and returns no report.
func (e *Explorer) Explore(ctx context.Context) (*model.Report, error) {
	if !e.begin() {
		return nil, ErrAlreadyRun
	}
	defer e.setState(StateDone)

	domain, err := e.validate()
	if err != nil {
		return nil, err
	}

	started := e.now()
	session, err := e.opener.Open(ctx, browser.OpenOptions{
		AuthStatePath: e.settings.AuthStatePath,
		Timeout:       e.settings.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrSession, err)
	}

	r := newRun(e, domain)

	e.setState(StateCrawling)
	e.logger.Info("exploration started",
		"start_url", e.settings.StartURL,
		"domain", domain,
		"max_pages", e.settings.MaxPages,
	)
	crawlErr := e.crawl(ctx, session, r)

	cancelled := false
	switch {
	case crawlErr == nil:
	case errors.Is(crawlErr, context.Canceled), errors.Is(crawlErr, context.DeadlineExceeded):
		cancelled = true
		e.logger.Warn("exploration interrupted", "error", crawlErr, "discovered", len(r.discovered))
	default:
		return nil, crawlErr
	}

	e.setState(StateAggregating)
	report := e.assemble(r, started, cancelled)

	e.logger.Info("exploration finished",
		"discovered", len(report.DiscoveredRoutes),
		"failed", len(report.FailedRoutes),
		"skipped_logout", len(report.SkippedLogoutRoutes),
		"menus", len(report.NavigationStructure),
	)

	if cancelled {
		return report, crawlErr
	}
	return report, nil
}

// validate checks the required settings and returns the exploration domain.
func (e *Explorer) validate() (string, error) {
	s := e.settings

	if s.StartURL == "" {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrNoStartURL)
	}
	domain, err := httpOrigin(s.StartURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %s", ErrConfiguration, config.ErrInvalidStartURL, s.StartURL)
	}
	if s.BaseURL == "" {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrNoBaseURL)
	}
	if _, err := httpOrigin(s.BaseURL); err != nil {
		return "", fmt.Errorf("%w: %w: %s", ErrConfiguration, config.ErrInvalidBaseURL, s.BaseURL)
	}
	if s.MaxPages < 1 {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrInvalidMaxPages)
	}
	if s.MaxRetries < 0 {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrInvalidMaxRetries)
	}
	if s.RetryDelay < 0 {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrInvalidRetryDelay)
	}
	if s.Timeout < 0 {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, config.ErrInvalidTimeout)
	}
	return domain, nil
}

func httpOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", crawler.ErrNotAbsoluteURL
	}
	return crawler.Origin(raw)
}

// run is the mutable state of one crawl.
type run struct {
	domain     string
	frontier   *crawler.Frontier
	visited    *crawler.VisitedSet
	retries    *crawler.RetryState
	guard      *crawler.LogoutGuard
	filter     crawler.PathFilter
	discovered []string
	failed     []model.FailedRoute
	extracts   []*model.NavPageExtract
}

func newRun(e *Explorer, domain string) *run {
	return &run{
		domain:   domain,
		frontier: crawler.NewFrontier(e.settings.StartURL),
		visited:  crawler.NewVisitedSet(),
		retries: crawler.NewRetryState(crawler.RetryPolicy{
			MaxRetries: e.settings.MaxRetries,
			Delay:      e.settings.RetryDelay,
		}),
		guard: crawler.NewLogoutGuard(),
		filter: crawler.PathFilter{
			Ignore: e.settings.IgnorePatterns,
			Follow: e.settings.FollowPatterns,
		},
		discovered: make([]string, 0),
		failed:     make([]model.FailedRoute, 0),
		extracts:   make([]*model.NavPageExtract, 0),
	}
}

// crawl visits pages until the frontier is empty or the budget is reached.
// The session is closed before it returns.
func (e *Explorer) crawl(ctx context.Context, session browser.Session, r *run) error {
	defer func() {
		if err := session.Close(); err != nil {
			e.logger.Warn("failed to close browser session", "error", err)
		}
	}()

	for !r.frontier.Empty() && len(r.discovered) < e.settings.MaxPages {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, _ := r.frontier.Dequeue()
		if r.visited.Has(next) {
			continue
		}
		r.visited.Add(next)
		route := crawler.Normalize(next)

		links, err := e.visit(ctx, session, next)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isFatal(err) {
				return fmt.Errorf("%w: %w", ErrSession, err)
			}
			if err := e.fail(ctx, r, next, route, err); err != nil {
				return err
			}
			continue
		}

		r.discovered = append(r.discovered, route)
		e.logger.Info("page discovered", "url", next, "route", route, "count", len(r.discovered))

		extract, err := e.extractor.Extract(ctx, session, next)
		switch {
		case err == nil && extract != nil:
			r.extracts = append(r.extracts, extract)
		case errors.Is(err, browser.ErrSessionLost):
			return fmt.Errorf("%w: %w", ErrSession, err)
		case err != nil:
			e.logger.Warn("navigation extraction failed", "route", route, "error", err)
		}

		e.enqueue(r, links)
	}

	return nil
}

// visit navigates to target and collects its links. A failure to collect
// links counts as a failed navigation.
func (e *Explorer) visit(ctx context.Context, session browser.Session, target string) ([]string, error) {
	if err := session.Navigate(ctx, target); err != nil {
		return nil, err
	}

	links, err := session.CollectLinks(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrSessionLost) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &browser.NavigationError{URL: target, Kind: model.ErrorTypeNavigation, Err: err}
	}
	return links, nil
}

// isFatal reports whether err ends the run rather than being retried.
func isFatal(err error) bool {
	if errors.Is(err, browser.ErrSessionLost) {
		return true
	}
	var navErr *browser.NavigationError
	return !errors.As(err, &navErr)
}

// fail applies the retry policy to a failed navigation.
func (e *Explorer) fail(ctx context.Context, r *run, target, route string, cause error) error {
	retry, attempts := r.retries.Decide(target)
	if retry {
		e.logger.Warn("navigation failed, retrying",
			"url", target,
			"attempt", attempts,
			"max_retries", e.settings.MaxRetries,
			"error", cause,
		)
		r.visited.Remove(target)
		if err := r.retries.Wait(ctx); err != nil {
			return err
		}
		r.frontier.Enqueue(target)
		return nil
	}

	e.logger.Warn("navigation failed permanently", "url", target, "attempts", attempts, "error", cause)
	r.failed = append(r.failed, model.FailedRoute{
		URL:            target,
		NormalizedPath: route,
		Error:          cause.Error(),
		ErrorType:      browser.KindOf(cause),
		RetryAttempts:  attempts,
		Timestamp:      e.now().UTC(),
	})
	return nil
}

// enqueue adds the qualifying links of a page to the frontier, in page
// order.
func (e *Explorer) enqueue(r *run, links []string) {
	for _, link := range links {
		resolved, ok := crawler.Resolve(link, r.domain)
		if !ok || !crawler.IsInternal(resolved, r.domain) {
			continue
		}
		if r.guard.ShouldSkip(resolved) {
			if r.guard.Record(resolved) {
				e.logger.Info("skipping logout link", "url", resolved)
			}
			continue
		}
		if !r.filter.Allows(resolved) {
			e.logger.Debug("link filtered by pattern", "url", resolved)
			continue
		}
		if r.visited.Has(resolved) {
			continue
		}
		r.frontier.Enqueue(resolved)
	}
}

// assemble aggregates the navigation extracts and builds the report.
func (e *Explorer) assemble(r *run, started time.Time, cancelled bool) *model.Report {
	groups := navigation.Aggregate(r.extracts, r.discovered)

	report := model.NewReport(e.settings.BaseURL, r.domain)
	report.DiscoveredRoutes = r.discovered
	report.FailedRoutes = r.failed
	report.SkippedLogoutRoutes = r.guard.Skipped()
	report.NavigationStructure = groups
	report.NavigationMetadata = navigation.Metadata(groups, len(r.extracts))
	report.Configuration = model.Configuration{
		MaxPages:             e.settings.MaxPages,
		MaxRetries:           e.settings.MaxRetries,
		RetryDelayMs:         e.settings.RetryDelay.Milliseconds(),
		TimeoutMs:            e.settings.Timeout.Milliseconds(),
		Headless:             e.settings.Headless,
		AuthStateProvided:    e.settings.AuthStatePath != "",
		LogoutProtection:     true,
		NavigationExtraction: true,
		PatternFiltering:     r.filter.Enabled(),
	}
	report.Summarize(started, e.now(), cancelled)
	return report
}
