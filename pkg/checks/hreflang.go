package checks

import (
	"fmt"
	"slices"
	"strings"

	"github.com/olimci/kotoba/pkg/utils/set"
)

const (
	NameBidirectional       = "hreflang-bidirectional"
	NameConsistentExternals = "hreflang-consistent-externals"
)

// Bidirectional requires every local alternate to be answered by a link
// back to the declaring page.
func Bidirectional() Check {
	return Check{Name: NameBidirectional, Run: bidirectional}
}

func bidirectional(g *Graph) []Error {
	var errs []Error
	report := func(p *Page, format string, args ...any) {
		errs = append(errs, Error{Check: NameBidirectional, Message: fmt.Sprintf(format, args...), File: p.File})
	}

	for _, p := range g.Shadowed() {
		first, _ := g.Lookup(p.URL)
		report(p, "has the same URL %q as %q", p.URL, first.File)
	}

	for _, p := range g.Pages {
		self, ok := p.Self()
		if !ok {
			continue
		}

		for _, l := range p.Links {
			if l.Href == p.URL || g.external(l.Href) {
				continue
			}

			target, ok := g.Lookup(l.Href)
			if !ok {
				if g.requireTargets {
					report(p, "links to %q but target page not found in build", l.Hreflang+":"+l.Href)
				}
				continue
			}

			if !hasAlternates(target) {
				report(p, "links to %q but %q has no alternates", l.Hreflang+":"+l.Href, target.File)
				continue
			}

			back, ok := findLink(target, self.Hreflang)
			if !ok {
				report(p, "links to %q but %q doesn't link back to %q", l.Hreflang+":"+l.Href, target.File, self.Hreflang)
				continue
			}
			if back.Href != p.URL {
				report(p, "links to %q but %q links %q to %q instead of %q", l.Hreflang+":"+l.Href, target.File, self.Hreflang, back.Href, p.URL)
			}
		}
	}

	return errs
}

// ConsistentExternals requires pages linked to each other to declare the
// same external alternates.
func ConsistentExternals() Check {
	return Check{Name: NameConsistentExternals, Run: consistentExternals}
}

func consistentExternals(g *Graph) []Error {
	var errs []Error
	checked := set.New[string]()

	for _, p := range g.Pages {
		externals := externalSet(g, p)
		if externals == "" {
			continue
		}

		for _, l := range p.Links {
			if l.Href == p.URL || g.external(l.Href) {
				continue
			}

			target, ok := g.Lookup(l.Href)
			if !ok || target == p {
				continue
			}

			pair := []string{p.File, target.File}
			slices.Sort(pair)
			if checked.HasAdd(strings.Join(pair, "↔")) {
				continue
			}

			if externalSet(g, target) != externals {
				errs = append(errs, Error{
					Check:   NameConsistentExternals,
					Message: fmt.Sprintf("%q and %q have different external alternates", p.File, target.File),
					File:    p.File,
				})
			}
		}
	}

	return errs
}

// externalSet is the canonical form of p's external links, sorted by
// hreflang.
func externalSet(g *Graph, p *Page) string {
	var links []Link
	for _, l := range p.Links {
		if g.external(l.Href) {
			links = append(links, l)
		}
	}
	slices.SortStableFunc(links, func(a, b Link) int {
		return strings.Compare(a.Hreflang, b.Hreflang)
	})

	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.Hreflang + ":" + l.Href
	}
	return strings.Join(parts, "|")
}

func hasAlternates(p *Page) bool {
	for _, l := range p.Links {
		if l.Href != p.URL {
			return true
		}
	}
	return false
}

func findLink(p *Page, hreflang string) (Link, bool) {
	for _, l := range p.Links {
		if l.Hreflang == hreflang {
			return l, true
		}
	}
	return Link{}, false
}
