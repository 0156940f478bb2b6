package navigation

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// HTML element names the extractor matches on.
const (
	htmlElementHTML   = "html"
	htmlElementBody   = "body"
	htmlElementAnchor = "a"
	htmlElementAside  = "aside"
	htmlElementHeader = "header"
	htmlElementNav    = "nav"
	htmlElementLi     = "li"
	htmlElementUl     = "ul"
	htmlElementOl     = "ol"
)

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr reports whether n carries the attribute at all.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// classTokens returns the lowercased class names of n.
func classTokens(n *html.Node) []string {
	return strings.Fields(strings.ToLower(getAttr(n, "class")))
}

// regionSuffixes are the trailing parts that keep a prefixed class such as
// "sidebar-menu" a region name. Other parts ("sidebar-mini", "sidebar-open")
// describe page state and do not mark a region.
var regionSuffixes = []string{"menu", "nav", "navigation", "wrapper", "container", "content", "inner", "list"}

// stateQualifiers are leading parts that turn a region name into a layout
// flag on some ancestor, as in "has-sidebar" or "no-navbar".
var stateQualifiers = []string{"has", "with", "without", "no", "show", "hide", "is", "toggle", "open", "collapsed"}

// hasRegionClass reports whether a class of n names one of the regions,
// either as the whole class ("sidebar"), qualified in front ("main-sidebar"),
// or followed by a structural part ("sidebar-menu").
func hasRegionClass(n *html.Node, names ...string) bool {
	for _, token := range classTokens(n) {
		for _, name := range names {
			if token == name {
				return true
			}
			if qualifier, ok := strings.CutSuffix(token, "-"+name); ok {
				first, _, _ := strings.Cut(qualifier, "-")
				if !slices.Contains(stateQualifiers, first) {
					return true
				}
			}
			if rest, ok := strings.CutPrefix(token, name+"-"); ok && slices.Contains(regionSuffixes, rest) {
				return true
			}
		}
	}
	return false
}

// hasStateClass reports whether a dash-separated part of any class of n is
// one of states: "active", "is-active" and "nav-active" match "active",
// "inactive" does not.
func hasStateClass(n *html.Node, states ...string) bool {
	for _, token := range classTokens(n) {
		for _, part := range strings.Split(token, "-") {
			if slices.Contains(states, part) {
				return true
			}
		}
	}
	return false
}

func isElement(n *html.Node, names ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

func isList(n *html.Node) bool {
	return isElement(n, htmlElementUl, htmlElementOl)
}

// textOf returns the visible text under n with whitespace collapsed.
// Script, style, and inline SVG content is ignored.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteString(" ")
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "svg" || n.Data == "template" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// ownText returns the visible text under n excluding nested lists.
// It is used for group headers of collapsible sidebar sections.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			continue
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
			continue
		}
		b.WriteString(textOf(c))
		b.WriteString(" ")
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// findAll returns descendants of n matching pred in document order.
// Matching nodes are not descended into when stop returns true for them.
func findAll(n *html.Node, pred func(*html.Node) bool, stop func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			if stop != nil && stop(c) {
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// firstOwnAnchor returns the first anchor under li that is not inside a
// nested list.
func firstOwnAnchor(li *html.Node) *html.Node {
	anchors := findAll(li, func(n *html.Node) bool {
		return isElement(n, htmlElementAnchor)
	}, isList)
	if len(anchors) == 0 {
		return nil
	}
	return anchors[0]
}

// parentElement returns the nearest element ancestor of n.
func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
