package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/nao1215/navscout/internal/model"
)

const (
	// idleWait is how long the network must be quiet before a page counts
	// as settled.
	idleWait = 500 * time.Millisecond

	// idleTimeout caps the idle wait so long-polling pages do not hang.
	idleTimeout = 5 * time.Second

	// defaultTimeout is used when OpenOptions carries no timeout.
	defaultTimeout = 2 * time.Minute
)

// Scripts evaluated in the page.
const (
	statusScript = `() => {
		const entry = performance.getEntriesByType('navigation')[0];
		return entry && entry.responseStatus ? entry.responseStatus : 0;
	}`
	linksScript = `() => Array.from(document.querySelectorAll('a[href]'), a => a.href)`

	restoreStorageScript = `(entries) => {
		for (const [name, value] of entries) {
			localStorage.setItem(name, value);
		}
	}`
)

// RodOpener launches Chromium through go-rod.
type RodOpener struct {
	bin        string
	headless   bool
	profileDir string
	width      int
	height     int
	logger     *slog.Logger
}

// RodOption configures a RodOpener.
type RodOption func(*RodOpener)

// WithBrowserBin sets the browser executable. By default the system
// Chromium is used when found, otherwise rod downloads one.
func WithBrowserBin(path string) RodOption {
	return func(o *RodOpener) {
		o.bin = path
	}
}

// WithHeadless toggles headless mode.
func WithHeadless(headless bool) RodOption {
	return func(o *RodOpener) {
		o.headless = headless
	}
}

// WithProfileDir runs the browser with a persistent user data directory,
// for example one that already holds a logged-in profile.
func WithProfileDir(dir string) RodOption {
	return func(o *RodOpener) {
		o.profileDir = dir
	}
}

// WithViewport sets the window size.
func WithViewport(width, height int) RodOption {
	return func(o *RodOpener) {
		o.width = width
		o.height = height
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RodOption {
	return func(o *RodOpener) {
		o.logger = logger
	}
}

// NewRodOpener creates an opener.
func NewRodOpener(opts ...RodOption) *RodOpener {
	o := &RodOpener{
		headless: true,
		width:    1440,
		height:   900,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open launches a browser, opens a blank tab, and restores the auth state
// when one is given. Anything created is torn down again if a later step
// fails.
func (o *RodOpener) Open(ctx context.Context, opts OpenOptions) (Session, error) {
	var state *AuthState
	if opts.AuthStatePath != "" {
		var err error
		state, err = LoadAuthState(opts.AuthStatePath)
		if err != nil {
			return nil, err
		}
	}

	l := launcher.New().Headless(o.headless)
	if o.bin != "" {
		l = l.Bin(o.bin)
	} else if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}
	if o.profileDir != "" {
		l = l.UserDataDir(o.profileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	s := &rodSession{
		launcher:   l,
		browser:    b,
		timeout:    opts.Timeout,
		ownProfile: o.profileDir == "",
		logger:     o.logger,
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	s.page = page

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             o.width,
		Height:            o.height,
		DeviceScaleFactor: 1,
	}).Call(page); err != nil {
		o.logger.Warn("failed to set viewport", "error", err)
	}

	if state != nil {
		if err := s.restore(ctx, state); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	return s, nil
}

// rodSession implements Session on one rod page.
type rodSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	timeout    time.Duration
	ownProfile bool
	closed     bool
	logger     *slog.Logger
}

// restore applies cookies, then visits each stored origin to write its
// localStorage.
func (s *rodSession) restore(ctx context.Context, state *AuthState) error {
	if params := cookieParams(state); len(params) > 0 {
		if err := s.page.SetCookies(params); err != nil {
			return fmt.Errorf("%w: set cookies: %w", ErrAuthState, err)
		}
	}

	for _, origin := range state.Origins {
		if len(origin.LocalStorage) == 0 {
			continue
		}
		if err := s.restoreOrigin(ctx, origin); err != nil {
			return err
		}
		s.logger.Debug("restored origin storage", "origin", origin.Origin, "entries", len(origin.LocalStorage))
	}
	return nil
}

func (s *rodSession) restoreOrigin(ctx context.Context, origin OriginState) error {
	page, release := s.timed(ctx)
	defer release()

	if err := page.Navigate(origin.Origin); err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrAuthState, origin.Origin, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: load %s: %w", ErrAuthState, origin.Origin, err)
	}
	if _, err := page.Evaluate(rod.Eval(restoreStorageScript, storagePairs(origin))); err != nil {
		return fmt.Errorf("%w: restore storage for %s: %w", ErrAuthState, origin.Origin, err)
	}
	return nil
}

// timed returns the tab bound to ctx and the per-call timeout, and a func
// that stops the timeout's timer.
func (s *rodSession) timed(ctx context.Context) (*rod.Page, func()) {
	page := s.page.Context(ctx).Timeout(s.timeout)
	return page, func() { page.CancelTimeout() }
}

// Navigate loads url, waits for the load event and a short network idle,
// then checks the document's HTTP status.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page, release := s.timed(ctx)
	defer release()

	if err := page.Navigate(url); err != nil {
		return s.classify(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return s.classify(ctx, url, err)
	}
	idle := page.Timeout(idleTimeout)
	idle.WaitRequestIdle(idleWait, nil, nil, nil)()
	idle.CancelTimeout()

	res, err := page.Evaluate(rod.Eval(statusScript))
	if err != nil {
		return s.classify(ctx, url, err)
	}
	if status := res.Value.Int(); status >= 400 {
		return NewHTTPError(url, status)
	}
	return nil
}

// CollectLinks returns the resolved href of every anchor on the page.
func (s *rodSession) CollectLinks(ctx context.Context) ([]string, error) {
	page, release := s.timed(ctx)
	defer release()

	res, err := page.Evaluate(rod.Eval(linksScript))
	if err != nil {
		return nil, s.probe(fmt.Errorf("collect links: %w", err))
	}

	values := res.Value.Arr()
	links := make([]string, 0, len(values))
	for _, v := range values {
		if href := v.Str(); href != "" {
			links = append(links, href)
		}
	}
	return links, nil
}

// Evaluate runs script and returns its value as JSON.
func (s *rodSession) Evaluate(ctx context.Context, script string) ([]byte, error) {
	page, release := s.timed(ctx)
	defer release()

	res, err := page.Evaluate(rod.Eval(script).ByPromise())
	if err != nil {
		return nil, s.probe(fmt.Errorf("evaluate: %w", err))
	}
	return []byte(res.Value.JSON("", "")), nil
}

// Close closes the tab and the browser. Calling it again is a no-op.
func (s *rodSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tab: %w", err))
		}
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
		s.launcher.Kill()
	}
	// A user-supplied profile must survive; only temporary ones are removed.
	if s.ownProfile {
		s.launcher.Cleanup()
	}
	return errors.Join(errs...)
}

// probe reports ErrSessionLost when the browser no longer answers.
func (s *rodSession) probe(err error) error {
	if _, verr := s.browser.Version(); verr != nil {
		return fmt.Errorf("%w: %w", ErrSessionLost, err)
	}
	return err
}

// classify turns a rod failure into a *NavigationError, or ErrSessionLost
// when the browser is gone. Cancellation of ctx is passed through as is.
func (s *rodSession) classify(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if _, verr := s.browser.Version(); verr != nil {
		return fmt.Errorf("%w: %w", ErrSessionLost, err)
	}
	return classifyNavigation(url, err)
}

// classifyNavigation maps a page-load error to a NavigationError kind.
func classifyNavigation(url string, err error) *NavigationError {
	navErr := &NavigationError{URL: url, Kind: model.ErrorTypeNavigation, Err: err}

	if errors.Is(err, context.DeadlineExceeded) {
		navErr.Kind = model.ErrorTypeTimeout
		return navErr
	}

	var rodErr *rod.NavigationError
	if errors.As(err, &rodErr) {
		reason := rodErr.Reason
		switch {
		case strings.Contains(reason, "ERR_TIMED_OUT"):
			navErr.Kind = model.ErrorTypeTimeout
		case isNetworkReason(reason):
			navErr.Kind = model.ErrorTypeNetwork
		}
	}
	return navErr
}

// networkReasons are Chromium net error codes for DNS, connection, and TLS
// failures.
var networkReasons = []string{
	"ERR_NAME_NOT_RESOLVED",
	"ERR_NAME_RESOLUTION_FAILED",
	"ERR_CONNECTION_",
	"ERR_ADDRESS_",
	"ERR_INTERNET_DISCONNECTED",
	"ERR_NETWORK_",
	"ERR_SSL_",
	"ERR_CERT_",
	"ERR_PROXY_",
	"ERR_TUNNEL_",
	"ERR_EMPTY_RESPONSE",
}

func isNetworkReason(reason string) bool {
	for _, r := range networkReasons {
		if strings.Contains(reason, r) {
			return true
		}
	}
	return false
}
