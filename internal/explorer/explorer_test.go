package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/navscout/internal/browser"
	"github.com/nao1215/navscout/internal/config"
	"github.com/nao1215/navscout/internal/model"
	"github.com/nao1215/navscout/internal/navigation"
)

const origin = "https://app.example.com"

// page scripts how the fake browser answers for one URL.
type page struct {
	links []string
	html  string

	// navErrs are returned by successive navigations; once exhausted,
	// navigation succeeds. A nil entry also succeeds.
	navErrs []error

	// alwaysFail makes every navigation return this error.
	alwaysFail error

	collectErr error
	evalErr    error
}

// fakeSession replays scripted pages and records what was asked of it.
type fakeSession struct {
	pages   map[string]*page
	current string

	navigations map[string]int
	order       []string
	closed      int

	// onNavigate runs before each navigation.
	onNavigate func(url string)
}

func newFakeSession(pages map[string]*page) *fakeSession {
	return &fakeSession{
		pages:       pages,
		navigations: make(map[string]int),
	}
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	if s.onNavigate != nil {
		s.onNavigate(url)
	}
	s.navigations[url]++
	s.order = append(s.order, url)

	p, ok := s.pages[url]
	if !ok {
		return browser.NewHTTPError(url, 404)
	}
	if p.alwaysFail != nil {
		return p.alwaysFail
	}
	if n := s.navigations[url]; n <= len(p.navErrs) && p.navErrs[n-1] != nil {
		return p.navErrs[n-1]
	}
	s.current = url
	return nil
}

func (s *fakeSession) CollectLinks(context.Context) ([]string, error) {
	p := s.pages[s.current]
	if p.collectErr != nil {
		return nil, p.collectErr
	}
	return p.links, nil
}

func (s *fakeSession) Evaluate(context.Context, string) ([]byte, error) {
	p := s.pages[s.current]
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	markup := p.html
	if markup == "" {
		markup = "<html><body></body></html>"
	}
	return json.Marshal(markup)
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeOpener struct {
	session *fakeSession
	err     error
	opened  int
	opts    browser.OpenOptions
}

func (o *fakeOpener) Open(_ context.Context, opts browser.OpenOptions) (browser.Session, error) {
	o.opened++
	o.opts = opts
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func settings(maxPages int) Settings {
	return Settings{
		BaseURL:    "https://login.example.com",
		StartURL:   origin + "/",
		MaxPages:   maxPages,
		MaxRetries: 2,
		Timeout:    time.Second,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExplorer(opener browser.Opener, s Settings) *Explorer {
	return New(opener, s, WithLogger(quietLogger()))
}

func timeoutErr(url string) error {
	return &browser.NavigationError{URL: url, Kind: model.ErrorTypeTimeout, Err: context.DeadlineExceeded}
}

// assertDisjoint checks that discovered, failed, and skipped never overlap.
func assertDisjoint(t *testing.T, report *model.Report) {
	t.Helper()

	discovered := make(map[string]bool)
	for _, r := range report.DiscoveredRoutes {
		discovered[r] = true
	}
	skipped := make(map[string]bool)
	for _, u := range report.SkippedLogoutRoutes {
		skipped[u] = true
		if discovered[u] || discovered[strings.TrimPrefix(u, origin)] {
			t.Errorf("%s is both skipped and discovered", u)
		}
	}
	for _, f := range report.FailedRoutes {
		if discovered[f.NormalizedPath] {
			t.Errorf("%s is both failed and discovered", f.URL)
		}
		if skipped[f.URL] {
			t.Errorf("%s is both failed and skipped", f.URL)
		}
	}
}

func TestExplore_EndToEnd(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/": {links: []string{
			origin + "/b",
			origin + "/c",
			"https://other.example.com/external",
		}},
		origin + "/b": {links: []string{origin + "/d", origin + "/logout"}},
		origin + "/c": {},
		origin + "/d": {},
	})
	opener := &fakeOpener{session: session}

	e := newExplorer(opener, settings(3))
	report, err := e.Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/b", "/c"}) {
		t.Errorf("DiscoveredRoutes = %v, want [/ /b /c]", report.DiscoveredRoutes)
	}
	if !slices.Equal(report.SkippedLogoutRoutes, []string{origin + "/logout"}) {
		t.Errorf("SkippedLogoutRoutes = %v", report.SkippedLogoutRoutes)
	}
	if len(report.FailedRoutes) != 0 {
		t.Errorf("FailedRoutes = %v, want none", report.FailedRoutes)
	}
	if session.navigations[origin+"/d"] != 0 {
		t.Error("/d should not be reached once the budget is spent")
	}
	if session.navigations["https://other.example.com/external"] != 0 {
		t.Error("external link was followed")
	}
	if session.navigations[origin+"/logout"] != 0 {
		t.Error("logout link was followed")
	}

	if report.ExplorationDomain != origin {
		t.Errorf("ExplorationDomain = %q, want %q", report.ExplorationDomain, origin)
	}
	if report.BaseURL != "https://login.example.com" {
		t.Errorf("BaseURL = %q", report.BaseURL)
	}
	if session.closed != 1 {
		t.Errorf("session closed %d times, want 1", session.closed)
	}
	if e.State() != StateDone {
		t.Errorf("State() = %s, want DONE", e.State())
	}
	if report.Summary.TotalAttempted != 3 || report.Summary.TotalSkippedLogout != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	assertDisjoint(t, report)
}

func TestExplore_AlwaysFailingURL(t *testing.T) {
	t.Parallel()

	broken := origin + "/broken"
	session := newFakeSession(map[string]*page{
		origin + "/":   {links: []string{broken, origin + "/ok"}},
		broken:         {alwaysFail: timeoutErr(broken)},
		origin + "/ok": {links: []string{broken}},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := session.navigations[broken]; got != 3 {
		t.Errorf("navigations to %s = %d, want 3", broken, got)
	}
	if len(report.FailedRoutes) != 1 {
		t.Fatalf("FailedRoutes = %+v, want one", report.FailedRoutes)
	}

	failed := report.FailedRoutes[0]
	if failed.URL != broken || failed.NormalizedPath != "/broken" {
		t.Errorf("unexpected failed route: %+v", failed)
	}
	if failed.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", failed.RetryAttempts)
	}
	if failed.ErrorType != model.ErrorTypeTimeout {
		t.Errorf("ErrorType = %q, want timeout", failed.ErrorType)
	}
	if failed.Timestamp.IsZero() {
		t.Error("expected a failure timestamp")
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/ok"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if report.Summary.TotalAttempted != 3 {
		t.Errorf("TotalAttempted = %d, want 3", report.Summary.TotalAttempted)
	}
	assertDisjoint(t, report)
}

func TestExplore_EveryFailedRouteUsesAllRetries(t *testing.T) {
	t.Parallel()

	for _, maxRetries := range []int{0, 1, 3} {
		session := newFakeSession(map[string]*page{
			origin + "/": {links: []string{origin + "/missing", origin + "/gone"}},
		})
		s := settings(10)
		s.MaxRetries = maxRetries

		report, err := newExplorer(&fakeOpener{session: session}, s).Explore(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.FailedRoutes) != 2 {
			t.Fatalf("maxRetries=%d: FailedRoutes = %+v", maxRetries, report.FailedRoutes)
		}
		for _, f := range report.FailedRoutes {
			if f.RetryAttempts != maxRetries+1 {
				t.Errorf("maxRetries=%d: RetryAttempts = %d", maxRetries, f.RetryAttempts)
			}
			if f.ErrorType != model.ErrorTypeHTTP {
				t.Errorf("ErrorType = %q, want http", f.ErrorType)
			}
		}
	}
}

func TestExplore_TransientFailureRecovers(t *testing.T) {
	t.Parallel()

	flaky := origin + "/flaky"
	session := newFakeSession(map[string]*page{
		origin + "/": {links: []string{flaky}},
		flaky:        {navErrs: []error{timeoutErr(flaky)}},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/flaky"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if len(report.FailedRoutes) != 0 {
		t.Errorf("FailedRoutes = %+v, want none", report.FailedRoutes)
	}
	if session.navigations[flaky] != 2 {
		t.Errorf("navigations = %d, want 2", session.navigations[flaky])
	}
}

func TestExplore_LogoutReferencedFromManyPages(t *testing.T) {
	t.Parallel()

	logout := origin + "/account/logout"
	session := newFakeSession(map[string]*page{
		origin + "/":      {links: []string{origin + "/a", logout, origin + "/b"}},
		origin + "/a":     {links: []string{logout}},
		origin + "/b":     {links: []string{"/account/logout", origin + "/account/logout#now"}},
		origin + "/other": {},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(report.SkippedLogoutRoutes, []string{logout}) {
		t.Errorf("SkippedLogoutRoutes = %v, want [%s]", report.SkippedLogoutRoutes, logout)
	}
	if slices.Contains(report.DiscoveredRoutes, "/account/logout") {
		t.Error("logout route was discovered")
	}
	if session.navigations[logout] != 0 {
		t.Error("logout URL was navigated to")
	}
	assertDisjoint(t, report)
}

func TestExplore_BudgetIsNeverExceeded(t *testing.T) {
	t.Parallel()

	links := make([]string, 0, 20)
	pages := map[string]*page{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		u := origin + "/" + name
		links = append(links, u)
		pages[u] = &page{links: []string{origin + "/"}}
	}
	pages[origin+"/"] = &page{links: links}

	for _, maxPages := range []int{1, 2, 5, 50} {
		session := newFakeSession(pages)
		report, err := newExplorer(&fakeOpener{session: session}, settings(maxPages)).Explore(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := min(maxPages, 9)
		if len(report.DiscoveredRoutes) != want {
			t.Errorf("maxPages=%d: discovered %d routes, want %d", maxPages, len(report.DiscoveredRoutes), want)
		}
	}
}

func TestExplore_FailuresDoNotConsumeBudget(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":  {links: []string{origin + "/x", origin + "/y", origin + "/z"}},
		origin + "/y": {},
		origin + "/z": {},
	})
	s := settings(3)
	s.MaxRetries = 0

	report, err := newExplorer(&fakeOpener{session: session}, s).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/y", "/z"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if len(report.FailedRoutes) != 1 {
		t.Errorf("FailedRoutes = %+v", report.FailedRoutes)
	}
}

func TestExplore_QueryVariantsShareARoute(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/": {links: []string{
			origin + "/users?page=1",
			origin + "/users?page=2",
			origin + "/users#top",
		}},
		origin + "/users?page=1": {links: []string{origin + "/users?page=3"}},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/users"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if len(session.order) != 2 {
		t.Errorf("navigated %v, want two pages", session.order)
	}
}

func TestExplore_IgnorePatterns(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":            {links: []string{origin + "/admin/users", origin + "/reports", origin + "/files/a.pdf"}},
		origin + "/reports":     {},
		origin + "/admin/users": {},
		origin + "/files/a.pdf": {},
	})
	s := settings(10)
	s.IgnorePatterns = []string{"/admin/*", "*.pdf"}

	report, err := newExplorer(&fakeOpener{session: session}, s).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/reports"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if !report.Configuration.PatternFiltering {
		t.Error("expected PatternFiltering to be reported")
	}
}

func TestExplore_RelativeLinksResolveAgainstExplorationDomain(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/home":     {links: []string{"/settings", "https://login.example.com/profile"}},
		origin + "/settings": {},
	})
	s := settings(10)
	s.StartURL = origin + "/home"

	report, err := newExplorer(&fakeOpener{session: session}, s).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/home", "/settings"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if session.navigations["https://login.example.com/profile"] != 0 {
		t.Error("link on the authentication domain was followed")
	}
}

func TestExplore_NavigationStructure(t *testing.T) {
	t.Parallel()

	menu := `<html><body><nav>
		<a href="/">Home</a>
		<a href="/reports">Reports</a>
	</nav></body></html>`

	session := newFakeSession(map[string]*page{
		origin + "/":        {html: menu, links: []string{origin + "/reports", origin + "/orphan"}},
		origin + "/reports": {html: menu},
		origin + "/orphan":  {},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	union := make(map[string]bool)
	for _, g := range report.NavigationStructure {
		names = append(names, g.MenuName)
		for _, r := range g.Routes {
			union[r] = true
		}
		for _, sub := range g.SubMenus {
			for _, r := range sub.Routes {
				union[r] = true
			}
		}
	}
	if !slices.Equal(names, []string{"Home", "Reports", model.StandaloneMenuName}) {
		t.Errorf("menus = %v", names)
	}
	if len(union) != len(report.DiscoveredRoutes) {
		t.Errorf("menu routes %v do not match discovered %v", union, report.DiscoveredRoutes)
	}
	for _, r := range report.DiscoveredRoutes {
		if !union[r] {
			t.Errorf("route %s missing from navigation structure", r)
		}
	}

	meta := report.NavigationMetadata
	if meta.PagesScanned != 3 || meta.StandalonePages != 1 || meta.MainMenus != 2 || meta.TotalMenus != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestExplore_ExtractionFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":     {links: []string{origin + "/next"}, evalErr: errors.New("execution context was destroyed")},
		origin + "/next": {},
	})

	report, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(report.DiscoveredRoutes, []string{"/", "/next"}) {
		t.Errorf("DiscoveredRoutes = %v", report.DiscoveredRoutes)
	}
	if report.NavigationMetadata.PagesScanned != 1 {
		t.Errorf("PagesScanned = %d, want 1", report.NavigationMetadata.PagesScanned)
	}
}

func TestExplore_LinkCollectionFailureIsRetried(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":    {links: []string{origin + "/bad"}},
		origin + "/bad": {collectErr: errors.New("node detached")},
	})
	s := settings(10)
	s.MaxRetries = 1

	report, err := newExplorer(&fakeOpener{session: session}, s).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.navigations[origin+"/bad"] != 2 {
		t.Errorf("navigations = %d, want 2", session.navigations[origin+"/bad"])
	}
	if len(report.FailedRoutes) != 1 || report.FailedRoutes[0].ErrorType != model.ErrorTypeNavigation {
		t.Errorf("FailedRoutes = %+v", report.FailedRoutes)
	}
}

func TestExplore_SessionLostIsFatal(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":     {links: []string{origin + "/next"}},
		origin + "/next": {alwaysFail: browser.ErrSessionLost},
	})

	e := newExplorer(&fakeOpener{session: session}, settings(10))
	report, err := e.Explore(t.Context())
	if !errors.Is(err, ErrSession) {
		t.Fatalf("expected ErrSession, got %v", err)
	}
	if !errors.Is(err, browser.ErrSessionLost) {
		t.Errorf("expected ErrSessionLost to be wrapped, got %v", err)
	}
	if report != nil {
		t.Error("expected no report")
	}
	if session.closed != 1 {
		t.Errorf("session closed %d times, want 1", session.closed)
	}
	if session.navigations[origin+"/next"] != 1 {
		t.Error("a lost session must not be retried")
	}
	if e.State() != StateDone {
		t.Errorf("State() = %s, want DONE", e.State())
	}
}

func TestExplore_UnclassifiedNavigationErrorIsFatal(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/": {alwaysFail: errors.New("websocket closed")},
	})

	_, err := newExplorer(&fakeOpener{session: session}, settings(10)).Explore(t.Context())
	if !errors.Is(err, ErrSession) {
		t.Fatalf("expected ErrSession, got %v", err)
	}
	if session.closed != 1 {
		t.Errorf("session closed %d times, want 1", session.closed)
	}
}

func TestExplore_OpenFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("chromium not found")
	e := newExplorer(&fakeOpener{err: cause}, settings(10))

	report, err := e.Explore(t.Context())
	if !errors.Is(err, ErrSession) || !errors.Is(err, cause) {
		t.Errorf("expected ErrSession wrapping cause, got %v", err)
	}
	if report != nil {
		t.Error("expected no report")
	}
}

func TestExplore_PassesOpenOptions(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{origin + "/": {}})
	opener := &fakeOpener{session: session}
	s := settings(1)
	s.AuthStatePath = "/tmp/state.json"

	report, err := newExplorer(opener, s).Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opener.opts.AuthStatePath != "/tmp/state.json" || opener.opts.Timeout != time.Second {
		t.Errorf("unexpected open options: %+v", opener.opts)
	}
	if !report.Configuration.AuthStateProvided {
		t.Error("expected AuthStateProvided")
	}
	if report.Configuration.MaxRetries != 2 || report.Configuration.TimeoutMs != 1000 {
		t.Errorf("unexpected configuration: %+v", report.Configuration)
	}
}

func TestExplore_InvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Settings)
		want   error
	}{
		{name: "missing start URL", modify: func(s *Settings) { s.StartURL = "" }, want: config.ErrNoStartURL},
		{name: "relative start URL", modify: func(s *Settings) { s.StartURL = "/home" }, want: config.ErrInvalidStartURL},
		{name: "non-http start URL", modify: func(s *Settings) { s.StartURL = "ftp://app.example.com/" }, want: config.ErrInvalidStartURL},
		{name: "missing base URL", modify: func(s *Settings) { s.BaseURL = "" }, want: config.ErrNoBaseURL},
		{name: "invalid base URL", modify: func(s *Settings) { s.BaseURL = "login" }, want: config.ErrInvalidBaseURL},
		{name: "zero max pages", modify: func(s *Settings) { s.MaxPages = 0 }, want: config.ErrInvalidMaxPages},
		{name: "negative retries", modify: func(s *Settings) { s.MaxRetries = -1 }, want: config.ErrInvalidMaxRetries},
		{name: "negative delay", modify: func(s *Settings) { s.RetryDelay = -time.Second }, want: config.ErrInvalidRetryDelay},
		{name: "negative timeout", modify: func(s *Settings) { s.Timeout = -time.Second }, want: config.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := settings(10)
			tt.modify(&s)
			opener := &fakeOpener{session: newFakeSession(nil)}

			_, err := newExplorer(opener, s).Explore(t.Context())
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if opener.opened != 0 {
				t.Error("session must not be opened for invalid settings")
			}
		})
	}
}

func TestExplore_SingleShot(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{origin + "/": {}})
	e := newExplorer(&fakeOpener{session: session}, settings(1))

	if e.State() != StateInit {
		t.Errorf("State() = %s, want INIT", e.State())
	}
	if _, err := e.Explore(t.Context()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := e.Explore(t.Context()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second run: expected ErrAlreadyRun, got %v", err)
	}
}

func TestExplore_CancellationReturnsPartialReport(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	session := newFakeSession(map[string]*page{
		origin + "/":  {links: []string{origin + "/a", origin + "/b"}},
		origin + "/a": {},
		origin + "/b": {},
	})
	session.onNavigate = func(url string) {
		if url == origin+"/a" {
			cancel()
		}
	}

	e := newExplorer(&fakeOpener{session: session}, settings(10))
	report, err := e.Explore(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("expected a partial report")
	}
	if !report.Summary.Cancelled {
		t.Error("expected Summary.Cancelled")
	}
	if session.closed != 1 {
		t.Errorf("session closed %d times, want 1", session.closed)
	}
	if session.navigations[origin+"/b"] != 0 {
		t.Error("crawl continued after cancellation")
	}
	if e.State() != StateDone {
		t.Errorf("State() = %s, want DONE", e.State())
	}
}

func TestExplore_CancellationDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	session := newFakeSession(map[string]*page{
		origin + "/": {links: []string{origin + "/slow"}},
	})
	s := settings(10)
	s.RetryDelay = time.Hour

	report, err := newExplorer(&fakeOpener{session: session}, s).Explore(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if report == nil || !slices.Equal(report.DiscoveredRoutes, []string{"/"}) {
		t.Errorf("unexpected partial report: %+v", report)
	}
}

func TestExplore_SummaryTimestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("JST", 9*60*60))
	session := newFakeSession(map[string]*page{origin + "/": {}})
	e := New(&fakeOpener{session: session}, settings(1),
		WithLogger(quietLogger()),
		withClock(func() time.Time { return fixed }),
	)

	report, err := e.Explore(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Summary.Timestamp.Equal(fixed) || report.Summary.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want %v in UTC", report.Summary.Timestamp, fixed)
	}
}

// countingExtractor records how often it is called.
type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Extract(_ context.Context, _ navigation.Evaluator, currentURL string) (*model.NavPageExtract, error) {
	c.calls++
	return model.NewNavPageExtract(currentURL), nil
}

func TestExplore_WithExtractor(t *testing.T) {
	t.Parallel()

	session := newFakeSession(map[string]*page{
		origin + "/":  {links: []string{origin + "/a"}},
		origin + "/a": {},
	})
	extractor := &countingExtractor{}
	e := New(&fakeOpener{session: session}, settings(10), WithLogger(quietLogger()), WithExtractor(extractor))

	if _, err := e.Explore(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.calls != 2 {
		t.Errorf("extractor called %d times, want 2", extractor.calls)
	}
}
