package navigation

import (
	"strings"

	"github.com/nao1215/navscout/internal/crawler"
	"github.com/nao1215/navscout/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// orderedSet is a string set that remembers insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		items: make([]string, 0),
		seen:  make(map[string]struct{}),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// filter returns the members that are also in keep, in insertion order.
func (s *orderedSet) filter(keep map[string]struct{}) []string {
	out := make([]string, 0, len(s.items))
	for _, v := range s.items {
		if _, ok := keep[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

type subMenuAcc struct {
	name   string
	routes *orderedSet
}

type groupAcc struct {
	name     string
	menuType model.MenuType
	routes   *orderedSet
	subs     []*subMenuAcc
	subIndex map[string]*subMenuAcc
	observed *orderedSet
}

// folder merges extracts into groups keyed by label.
type folder struct {
	caser  cases.Caser
	groups []*groupAcc
	index  map[string]*groupAcc
}

func newFolder() *folder {
	return &folder{
		caser:  cases.Lower(language.Und),
		groups: make([]*groupAcc, 0),
		index:  make(map[string]*groupAcc),
	}
}

// labelKey is the case-insensitive merge key for a menu label.
func (f *folder) labelKey(label string) string {
	return f.caser.String(strings.Join(strings.Fields(label), " "))
}

// group creates or fetches the group for label. It returns nil for labels
// that are empty after trimming.
func (f *folder) group(label string) *groupAcc {
	key := f.labelKey(label)
	if key == "" {
		return nil
	}
	if g, ok := f.index[key]; ok {
		return g
	}
	g := &groupAcc{
		name:     strings.TrimSpace(label),
		menuType: model.MenuTypeMain,
		routes:   newOrderedSet(),
		subs:     make([]*subMenuAcc, 0),
		subIndex: make(map[string]*subMenuAcc),
		observed: newOrderedSet(),
	}
	f.index[key] = g
	f.groups = append(f.groups, g)
	return g
}

func (f *folder) subMenu(g *groupAcc, label string) *subMenuAcc {
	key := f.labelKey(label)
	if key == "" {
		return nil
	}
	if s, ok := g.subIndex[key]; ok {
		return s
	}
	s := &subMenuAcc{name: strings.TrimSpace(label), routes: newOrderedSet()}
	g.subIndex[key] = s
	g.subs = append(g.subs, s)
	return s
}

func (f *folder) fold(e *model.NavPageExtract) {
	for _, item := range e.MainMenuItems {
		g := f.group(item.Text)
		if g == nil {
			continue
		}
		if item.Href != "" {
			g.routes.add(crawler.Normalize(item.Href))
		}
		g.observed.add(e.SourceRoute)
	}

	for _, item := range e.SidebarItems {
		g := f.group(item.Text)
		if g == nil {
			continue
		}
		if item.Href != "" {
			g.routes.add(crawler.Normalize(item.Href))
		}
		g.observed.add(e.SourceRoute)

		for _, sub := range item.SubItems {
			s := f.subMenu(g, sub.Text)
			if s == nil || sub.Href == "" {
				continue
			}
			s.routes.add(crawler.Normalize(sub.Href))
		}
	}
}

// Aggregate merges per-page extracts, in crawl order, into one menu
// hierarchy. Items are grouped by trimmed, case-insensitive label. Routes
// come from normalized hrefs and only discovered routes are kept, so the
// routes across all groups, their sub-menus, and the trailing "Standalone
// Pages" group add up to exactly discoveredRoutes. Nil extracts are skipped.
//
// Two different paths that share a label end up in one group.
func Aggregate(extracts []*model.NavPageExtract, discoveredRoutes []string) []model.MenuGroup {
	f := newFolder()
	for _, e := range extracts {
		if e == nil {
			continue
		}
		f.fold(e)
	}

	discovered := make(map[string]struct{}, len(discoveredRoutes))
	for _, r := range discoveredRoutes {
		discovered[r] = struct{}{}
	}

	claimed := make(map[string]struct{})
	groups := make([]model.MenuGroup, 0, len(f.groups)+1)
	for _, g := range f.groups {
		for _, r := range g.routes.items {
			claimed[r] = struct{}{}
		}

		subMenus := make([]model.SubMenu, 0, len(g.subs))
		for _, s := range g.subs {
			for _, r := range s.routes.items {
				claimed[r] = struct{}{}
			}
			routes := s.routes.filter(discovered)
			subMenus = append(subMenus, model.SubMenu{
				Name:       s.name,
				Parent:     g.name,
				Routes:     routes,
				RouteCount: len(routes),
			})
		}

		routes := g.routes.filter(discovered)
		groups = append(groups, model.MenuGroup{
			MenuName:         g.name,
			MenuType:         g.menuType,
			Routes:           routes,
			RouteCount:       len(routes),
			SubMenus:         subMenus,
			ObservedPages:    g.observed.items,
			IsNavigationMenu: true,
		})
	}

	standalone := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range discoveredRoutes {
		if _, ok := claimed[r]; ok {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		standalone = append(standalone, r)
	}

	if len(standalone) > 0 {
		groups = append(groups, model.MenuGroup{
			MenuName:         model.StandaloneMenuName,
			MenuType:         model.MenuTypeStandalone,
			Routes:           standalone,
			RouteCount:       len(standalone),
			SubMenus:         make([]model.SubMenu, 0),
			ObservedPages:    make([]string, 0),
			IsNavigationMenu: false,
		})
	}

	return groups
}

// Metadata counts the aggregated hierarchy.
func Metadata(groups []model.MenuGroup, pagesScanned int) model.NavigationMetadata {
	meta := model.NavigationMetadata{
		TotalMenus:   len(groups),
		PagesScanned: pagesScanned,
	}
	for _, g := range groups {
		switch g.MenuType {
		case model.MenuTypeMain:
			meta.MainMenus++
		case model.MenuTypeStandalone:
			meta.StandalonePages += g.RouteCount
		}
		meta.TotalSubMenus += len(g.SubMenus)
	}
	return meta
}
