package checks

import (
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/olimci/kotoba/pkg/content"
	"github.com/olimci/kotoba/pkg/i18n"
)

// Link is one hreflang alternate declared by a page.
type Link struct {
	Hreflang string
	Href     string
}

// Page is a node of the alternate graph. File names the page in reports.
type Page struct {
	File  string
	URL   string
	Links []Link
}

// Self returns the link a page declares for itself.
func (p *Page) Self() (Link, bool) {
	for _, l := range p.Links {
		if l.Href == p.URL {
			return l, true
		}
	}
	return Link{}, false
}

// Graph is the set of pages the checks run over.
type Graph struct {
	Pages []*Page

	byURL    map[string]*Page
	shadowed []*Page
	external func(href string) bool
	// requireTargets reports links whose target page is missing.
	requireTargets bool
}

func newGraph(pages []*Page, external func(string) bool, requireTargets bool) *Graph {
	g := &Graph{
		Pages:          pages,
		byURL:          make(map[string]*Page, len(pages)),
		external:       external,
		requireTargets: requireTargets,
	}
	for _, p := range pages {
		if _, ok := g.byURL[p.URL]; ok {
			g.shadowed = append(g.shadowed, p)
			continue
		}
		g.byURL[p.URL] = p
	}
	return g
}

// Shadowed lists the pages whose URL an earlier page already has. Lookup
// never returns them.
func (g *Graph) Shadowed() []*Page {
	return g.shadowed
}

func (g *Graph) Lookup(u string) (*Page, bool) {
	p, ok := g.byURL[u]
	return p, ok
}

func (g *Graph) IsExternal(href string) bool {
	return g.external(href)
}

// FromEntries builds the graph of the alternates declared in frontmatter.
// Pages are named by entry id and identified by their relative URL. Links
// to pages that do not exist are left to the resolver.
func FromEntries(r *i18n.Resolver, entries []*content.Entry) *Graph {
	reg := r.Registry()

	pages := make([]*Page, 0, len(entries))
	for _, e := range content.Published(entries) {
		locale := r.LocaleFromID(e.ID)
		p := &Page{
			File: e.ID,
			URL:  r.PageURL(e),
		}
		p.Links = append(p.Links, Link{Hreflang: locale, Href: p.URL})

		for _, key := range slices.Sorted(maps.Keys(e.Data.Alternates)) {
			value := e.Data.Alternates[key]
			switch {
			case key == locale:
			case i18n.IsExternal(value):
				p.Links = append(p.Links, Link{Hreflang: key, Href: value})
			case reg.IsValid(key):
				p.Links = append(p.Links, Link{Hreflang: key, Href: r.RelativeURL(key, value)})
			}
		}

		pages = append(pages, p)
	}

	return newGraph(pages, i18n.IsExternal, false)
}

// FromHTML builds the graph of scanned output pages. Pages without hreflang
// links are dropped. An http(s) link is external unless its origin is one
// of internalOrigins.
func FromHTML(pages []*Page, internalOrigins []string) *Graph {
	origins := make(map[string]struct{}, len(internalOrigins))
	for _, o := range internalOrigins {
		if origin, ok := originOf(o); ok {
			origins[origin] = struct{}{}
		}
	}

	kept := make([]*Page, 0, len(pages))
	for _, p := range pages {
		if len(p.Links) > 0 {
			kept = append(kept, p)
		}
	}

	return newGraph(kept, func(href string) bool {
		if !i18n.IsExternal(href) {
			return false
		}
		origin, ok := originOf(href)
		if !ok {
			return false
		}
		_, internal := origins[origin]
		return !internal
	}, true)
}

func originOf(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

// ExternalOrigins returns the number of external links in g and their
// distinct origins in order of first appearance.
func (g *Graph) ExternalOrigins() (int, []string) {
	n := 0
	var origins []string
	for _, p := range g.Pages {
		for _, l := range p.Links {
			if !g.external(l.Href) {
				continue
			}
			n++
			if o, ok := originOf(l.Href); ok && !slices.Contains(origins, o) {
				origins = append(origins, o)
			}
		}
	}
	return n, origins
}
