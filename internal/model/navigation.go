package model

// NavItem is one main-menu entry observed on a page.
type NavItem struct {
	// Text is the visible label with whitespace collapsed.
	Text string `json:"text"`

	// Href is the raw same-origin href as written in the page (begins with "/").
	Href string `json:"href"`

	// IsActive reports whether the page rendered this item as the current one.
	IsActive bool `json:"isActive"`
}

// SidebarItem is a top-level sidebar entry with its nested links.
// Href may be empty for collapsible group headers that only carry SubItems.
type SidebarItem struct {
	Text     string    `json:"text"`
	Href     string    `json:"href"`
	IsActive bool      `json:"isActive"`
	SubItems []SubItem `json:"subItems"`
}

// SubItem is a link nested one level below a sidebar item.
type SubItem struct {
	Text string `json:"text"`
	Href string `json:"href"`

	// ParentText is the label of the owning sidebar item.
	ParentText string `json:"parentText"`
}

// Breadcrumb is one element of a breadcrumb trail.
// Href is empty for the trailing current-page crumb.
type Breadcrumb struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// NavPageExtract is the navigation snapshot of a single page.
type NavPageExtract struct {
	MainMenuItems []NavItem     `json:"mainMenuItems"`
	SidebarItems  []SidebarItem `json:"sidebarItems"`
	Breadcrumbs   []Breadcrumb  `json:"breadcrumbs"`

	// SourceRoute is the normalized route of the page the snapshot came from.
	SourceRoute string `json:"sourceRoute"`
}

// NewNavPageExtract creates an empty extract for route.
func NewNavPageExtract(route string) *NavPageExtract {
	return &NavPageExtract{
		MainMenuItems: make([]NavItem, 0),
		SidebarItems:  make([]SidebarItem, 0),
		Breadcrumbs:   make([]Breadcrumb, 0),
		SourceRoute:   route,
	}
}

// IsEmpty reports whether no navigation structure was found.
func (e *NavPageExtract) IsEmpty() bool {
	return len(e.MainMenuItems) == 0 && len(e.SidebarItems) == 0 && len(e.Breadcrumbs) == 0
}

// MenuType classifies an aggregated menu group.
type MenuType string

const (
	// MenuTypeMain is a group built from main-menu or sidebar observations.
	MenuTypeMain MenuType = "main"

	// MenuTypeStandalone is the synthesized group of unreferenced routes.
	MenuTypeStandalone MenuType = "standalone"
)

// StandaloneMenuName is the name of the synthesized standalone group.
const StandaloneMenuName = "Standalone Pages"

// SubMenu is a sub-menu of a MenuGroup, keyed by its label within the parent.
type SubMenu struct {
	Name       string   `json:"name"`
	Parent     string   `json:"parent"`
	Routes     []string `json:"routes"`
	RouteCount int      `json:"routeCount"`
}

// MenuGroup is the deduplicated view of one logical navigation entry across
// every page where it was observed.
type MenuGroup struct {
	MenuName         string    `json:"menuName"`
	MenuType         MenuType  `json:"menuType"`
	Routes           []string  `json:"routes"`
	RouteCount       int       `json:"routeCount"`
	SubMenus         []SubMenu `json:"subMenus"`
	ObservedPages    []string  `json:"observedPages"`
	IsNavigationMenu bool      `json:"isNavigationMenu"`
}

// NavigationMetadata summarizes the aggregated hierarchy.
type NavigationMetadata struct {
	TotalMenus      int `json:"totalMenus"`
	MainMenus       int `json:"mainMenus"`
	StandalonePages int `json:"standalonePages"`
	TotalSubMenus   int `json:"totalSubMenus"`
	PagesScanned    int `json:"pagesScanned"`
}
