package navigation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nao1215/navscout/internal/crawler"
	"github.com/nao1215/navscout/internal/model"
	"golang.org/x/net/html"
)

// DOMScript is evaluated in the page to obtain the rendered document.
// Navigation menus are usually built client-side, so the served HTML is not
// enough.
const DOMScript = "() => document.documentElement.outerHTML"

// Evaluator runs a script in the current page and returns its result as JSON.
type Evaluator interface {
	Evaluate(ctx context.Context, script string) ([]byte, error)
}

// container is the kind of navigation region an element represents.
type container int

const (
	containerNone container = iota
	containerBreadcrumb
	containerSidebar
	containerMain
)

// Class names for each region, checked in this order: breadcrumb, sidebar,
// main. See hasRegionClass for how a class matches.
var (
	breadcrumbClasses = []string{"breadcrumb"}
	sidebarClasses    = []string{"sidebar", "side-nav", "sidenav", "side-menu", "sidemenu", "drawer", "nav-drawer"}
	mainClasses       = []string{"navbar", "main-nav", "mainnav", "main-menu", "top-nav", "topnav", "menu-bar", "menubar", "primary-nav", "nav-menu", "site-nav"}
	// Matched as dash-separated class parts by hasStateClass.
	activeClasses = []string{"active", "current", "selected"}
)

// Extractor produces a NavPageExtract from the rendered page.
type Extractor struct {
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract evaluates DOMScript on page and returns the navigation found in the
// rendered document. currentURL is the page's URL; its route becomes the
// extract's SourceRoute. Errors wrap ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, page Evaluator, currentURL string) (*model.NavPageExtract, error) {
	raw, err := page.Evaluate(ctx, DOMScript)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate: %w", ErrExtraction, err)
	}

	var markup string
	if err := json.Unmarshal(raw, &markup); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", ErrExtraction, err)
	}

	extract, err := ExtractHTML(strings.NewReader(markup), crawler.Normalize(currentURL))
	if err != nil {
		return nil, err
	}

	e.logger.Debug("navigation extracted",
		"route", extract.SourceRoute,
		"main_items", len(extract.MainMenuItems),
		"sidebar_items", len(extract.SidebarItems),
		"breadcrumbs", len(extract.Breadcrumbs),
	)
	return extract, nil
}

// ExtractHTML parses markup and collects its navigation for route.
func ExtractHTML(r io.Reader, route string) (*model.NavPageExtract, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %w", ErrExtraction, err)
	}

	w := &walker{
		extract:  model.NewNavPageExtract(route),
		seenMain: make(map[string]bool),
		seenSide: make(map[string]bool),
	}
	w.walk(doc)
	return w.extract, nil
}

// classify returns the region n starts, if any.
func classify(n *html.Node) container {
	// The document shell carries layout classes such as "sidebar-mini".
	if n.Type != html.ElementNode || isElement(n, htmlElementHTML, htmlElementBody) {
		return containerNone
	}

	if strings.Contains(strings.ToLower(getAttr(n, "aria-label")), "breadcrumb") ||
		hasRegionClass(n, breadcrumbClasses...) {
		return containerBreadcrumb
	}

	if n.Data == htmlElementAside || hasRegionClass(n, sidebarClasses...) {
		return containerSidebar
	}

	if n.Data == htmlElementNav || n.Data == htmlElementHeader ||
		strings.EqualFold(getAttr(n, "role"), "navigation") ||
		hasRegionClass(n, mainClasses...) {
		return containerMain
	}

	return containerNone
}

// walker accumulates one page's extract while visiting the DOM.
type walker struct {
	extract  *model.NavPageExtract
	seenMain map[string]bool
	seenSide map[string]bool
}

func (w *walker) walk(n *html.Node) {
	switch classify(n) {
	case containerBreadcrumb:
		w.breadcrumbs(n)
		return
	case containerSidebar:
		w.sidebar(n)
		return
	case containerMain:
		w.mainMenu(n)
		return
	case containerNone:
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// mainMenu collects the anchors of a primary navigation region. Breadcrumb
// and sidebar regions nested inside it are handed back to walk.
func (w *walker) mainMenu(root *html.Node) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch classify(c) {
			case containerBreadcrumb:
				w.breadcrumbs(c)
				continue
			case containerSidebar:
				w.sidebar(c)
				continue
			case containerMain, containerNone:
			}

			if isElement(c, htmlElementAnchor) {
				w.addMainItem(c)
				continue
			}
			visit(c)
		}
	}
	visit(root)
}

func (w *walker) addMainItem(a *html.Node) {
	href := getAttr(a, "href")
	text := textOf(a)
	if !isRelativeHref(href) || text == "" {
		return
	}

	key := text + "\x00" + href
	if w.seenMain[key] {
		return
	}
	w.seenMain[key] = true

	w.extract.MainMenuItems = append(w.extract.MainMenuItems, model.NavItem{
		Text:     text,
		Href:     href,
		IsActive: isActive(a),
	})
}

// sidebar collects the top-level items of a sidebar region and the links
// nested one level below each of them.
func (w *walker) sidebar(root *html.Node) {
	crumbs := findAll(root, func(n *html.Node) bool {
		return classify(n) == containerBreadcrumb
	}, func(n *html.Node) bool {
		return classify(n) == containerBreadcrumb
	})
	for _, c := range crumbs {
		w.breadcrumbs(c)
	}
	notCrumb := func(n *html.Node) bool { return classify(n) == containerBreadcrumb }

	items := findAll(root, func(n *html.Node) bool {
		return isElement(n, htmlElementLi)
	}, func(n *html.Node) bool {
		return isElement(n, htmlElementLi) || notCrumb(n)
	})

	if len(items) == 0 {
		anchors := findAll(root, func(n *html.Node) bool {
			return isElement(n, htmlElementAnchor)
		}, notCrumb)
		for _, a := range anchors {
			href := getAttr(a, "href")
			text := textOf(a)
			if !isRelativeHref(href) || text == "" {
				continue
			}
			w.addSidebarItem(model.SidebarItem{
				Text:     text,
				Href:     href,
				IsActive: isActive(a),
				SubItems: make([]model.SubItem, 0),
			})
		}
		return
	}

	for _, li := range items {
		w.sidebarListItem(li)
	}
}

func (w *walker) sidebarListItem(li *html.Node) {
	item := model.SidebarItem{SubItems: make([]model.SubItem, 0)}

	anchor := firstOwnAnchor(li)
	if anchor != nil {
		item.Text = textOf(anchor)
		if href := getAttr(anchor, "href"); isRelativeHref(href) {
			item.Href = href
		}
		item.IsActive = isActive(anchor)
	}
	if item.Text == "" {
		item.Text = ownText(li)
	}
	if item.Text == "" {
		return
	}
	if !item.IsActive {
		item.IsActive = hasStateClass(li, activeClasses...) || ariaCurrent(li)
	}

	seen := make(map[string]bool)
	for _, a := range subAnchors(li, anchor) {
		href := getAttr(a, "href")
		text := textOf(a)
		if !isRelativeHref(href) || text == "" || seen[text+"\x00"+href] {
			continue
		}
		seen[text+"\x00"+href] = true
		item.SubItems = append(item.SubItems, model.SubItem{
			Text:       text,
			Href:       href,
			ParentText: item.Text,
		})
	}

	// A header without a link of its own is kept only when it groups links.
	if item.Href == "" && len(item.SubItems) == 0 {
		return
	}
	w.addSidebarItem(item)
}

// subAnchors returns the links one level below li: the anchors of its
// outermost nested lists, without descending into lists nested deeper. When
// li has no nested list, every anchor other than own is returned.
func subAnchors(li, own *html.Node) []*html.Node {
	isAnchor := func(n *html.Node) bool {
		return isElement(n, htmlElementAnchor) && n != own
	}

	lists := findAll(li, isList, isList)
	if len(lists) == 0 {
		return findAll(li, isAnchor, nil)
	}

	var anchors []*html.Node
	for _, list := range lists {
		anchors = append(anchors, findAll(list, isAnchor, isList)...)
	}
	return anchors
}

func (w *walker) addSidebarItem(item model.SidebarItem) {
	key := item.Text + "\x00" + item.Href
	if w.seenSide[key] {
		return
	}
	w.seenSide[key] = true
	w.extract.SidebarItems = append(w.extract.SidebarItems, item)
}

// breadcrumbs collects a breadcrumb trail. List items without a link, such
// as the trailing current page, are kept with an empty href.
func (w *walker) breadcrumbs(root *html.Node) {
	items := findAll(root, func(n *html.Node) bool {
		return isElement(n, htmlElementLi)
	}, func(n *html.Node) bool {
		return isElement(n, htmlElementLi)
	})

	if len(items) == 0 {
		anchors := findAll(root, func(n *html.Node) bool {
			return isElement(n, htmlElementAnchor)
		}, nil)
		for _, a := range anchors {
			href := getAttr(a, "href")
			text := textOf(a)
			if !isRelativeHref(href) || text == "" {
				continue
			}
			w.extract.Breadcrumbs = append(w.extract.Breadcrumbs, model.Breadcrumb{Text: text, Href: href})
		}
		return
	}

	for _, li := range items {
		crumb := model.Breadcrumb{}
		if a := firstOwnAnchor(li); a != nil {
			crumb.Text = textOf(a)
			if href := getAttr(a, "href"); isRelativeHref(href) {
				crumb.Href = href
			}
		}
		if crumb.Text == "" {
			crumb.Text = textOf(li)
		}
		if crumb.Text == "" {
			continue
		}
		w.extract.Breadcrumbs = append(w.extract.Breadcrumbs, crumb)
	}
}

// isRelativeHref reports whether href is a same-origin path ("/x" but not
// the protocol-relative "//host/x").
func isRelativeHref(href string) bool {
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}

// isActive applies the common active-state conventions to an anchor and its
// parent element.
func isActive(a *html.Node) bool {
	if hasStateClass(a, activeClasses...) || ariaCurrent(a) {
		return true
	}
	if p := parentElement(a); p != nil && isElement(p, htmlElementLi) {
		return hasStateClass(p, activeClasses...) || ariaCurrent(p)
	}
	return false
}

func ariaCurrent(n *html.Node) bool {
	if !hasAttr(n, "aria-current") {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(getAttr(n, "aria-current")), "false")
}
