package i18n

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/olimci/kotoba/pkg/content"
)

var ErrDanglingAlternate = errors.New("dangling alternate")

// DanglingAlternateError is returned when an explicit alternate names a
// local slug that no entry of that locale resolves to.
type DanglingAlternateError struct {
	ID     string
	Locale string
	Slug   string
}

func (e *DanglingAlternateError) Error() string {
	return fmt.Sprintf("%s: %q declares %s:%q but no such page exists", ErrDanglingAlternate, e.ID, e.Locale, e.Slug)
}

func (e *DanglingAlternateError) Unwrap() error {
	return ErrDanglingAlternate
}

// aliasKey matches region or script qualified hreflang values such as en-US.
var aliasKey = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})+$`)

// Alternates maps a locale code, or an hreflang alias, to a URL.
type Alternates map[string]string

type Alternate struct {
	Key string
	URL string
}

// Sorted lists registered locales in registry order, then any other keys
// lexicographically.
func (a Alternates) Sorted(reg *Registry) []Alternate {
	keys := slices.SortedFunc(maps.Keys(a), func(x, y string) int {
		px, py := reg.Position(x), reg.Position(y)
		switch {
		case px >= 0 && py >= 0:
			return px - py
		case px >= 0:
			return -1
		case py >= 0:
			return 1
		}
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
		return 0
	})

	out := make([]Alternate, len(keys))
	for i, k := range keys {
		out[i] = Alternate{Key: k, URL: a[k]}
	}
	return out
}

// MissingLocales lists registered locales that have no entry in a.
func (r *Resolver) MissingLocales(a Alternates) []string {
	out := make([]string, 0)
	for _, locale := range r.reg.locales {
		if _, ok := a[locale]; !ok {
			out = append(out, locale)
		}
	}
	return out
}

// Index precomputes the join keys of a set of entries. Drafts are left out.
type Index struct {
	r          *Resolver
	entries    []*content.Entry
	byBase     map[string][]*content.Entry
	bySlug     map[pageKey]*content.Entry
	backs      map[pageKey][]*content.Entry
	collisions []Collision
}

// Collision is an entry that resolves to the URL of an earlier entry. The
// shadowed entry is left out of the index.
type Collision struct {
	URL      string
	Kept     *content.Entry
	Shadowed *content.Entry
}

type pageKey struct {
	locale string
	slug   string
}

func (r *Resolver) NewIndex(entries []*content.Entry) *Index {
	ix := &Index{
		r:      r,
		byBase: make(map[string][]*content.Entry),
		bySlug: make(map[pageKey]*content.Entry),
		backs:  make(map[pageKey][]*content.Entry),
	}

	for _, e := range entries {
		if e.Data.Draft {
			continue
		}

		locale := r.LocaleFromID(e.ID)
		key := pageKey{locale, r.URLSlug(e)}
		if kept, ok := ix.bySlug[key]; ok {
			ix.collisions = append(ix.collisions, Collision{
				URL:      r.RelativeURL(key.locale, key.slug),
				Kept:     kept,
				Shadowed: e,
			})
			continue
		}
		ix.bySlug[key] = e
		ix.entries = append(ix.entries, e)

		base := r.BasePath(e.ID)
		ix.byBase[base] = append(ix.byBase[base], e)

		for target, value := range e.Data.Alternates {
			if target == locale || !r.reg.IsValid(target) || IsExternal(value) {
				continue
			}
			back := pageKey{target, CleanSlug(value)}
			ix.backs[back] = append(ix.backs[back], e)
		}
	}

	return ix
}

func (ix *Index) Resolver() *Resolver {
	return ix.r
}

// Collisions lists the entries dropped because their URL was taken.
func (ix *Index) Collisions() []Collision {
	return ix.collisions
}

// Entries returns the non-draft entries in their original order.
func (ix *Index) Entries() []*content.Entry {
	return ix.entries
}

// Lookup finds the page of locale whose URL slug is slug.
func (ix *Index) Lookup(locale, slug string) (*content.Entry, bool) {
	e, ok := ix.bySlug[pageKey{locale, CleanSlug(slug)}]
	return e, ok
}

// Alternates resolves the locale to URL map of e. Auto-matched pages come
// from a shared base path or from an explicit alternate pointing back at e;
// explicit alternates of e override them.
func (ix *Index) Alternates(e *content.Entry, absolute bool) (Alternates, error) {
	r := ix.r
	locale := r.LocaleFromID(e.ID)
	slug := r.URLSlug(e)

	out := Alternates{locale: r.URL(locale, slug, absolute)}

	match := func(other *content.Entry) {
		otherLocale := r.LocaleFromID(other.ID)
		if otherLocale == locale {
			return
		}
		if _, ok := out[otherLocale]; ok {
			return
		}
		out[otherLocale] = r.URL(otherLocale, r.URLSlug(other), absolute)
	}

	for _, other := range ix.byBase[r.BasePath(e.ID)] {
		if v, ok := other.Data.Alternates[locale]; ok && !IsExternal(v) && CleanSlug(v) != slug {
			continue
		}
		match(other)
	}
	for _, other := range ix.backs[pageKey{locale, slug}] {
		match(other)
	}

	for _, key := range slices.Sorted(maps.Keys(e.Data.Alternates)) {
		value := e.Data.Alternates[key]
		if key == locale {
			continue
		}

		switch {
		case IsExternal(value):
			out[key] = value
		case r.reg.IsValid(key):
			target, ok := ix.Lookup(key, value)
			if !ok {
				return nil, &DanglingAlternateError{ID: e.ID, Locale: key, Slug: CleanSlug(value)}
			}
			out[key] = r.URL(key, r.URLSlug(target), absolute)
		case isSelfAlias(key, value, slug):
			out[key] = out[locale]
		}
	}

	return out, nil
}

// AlternateURLs resolves e against all. Use an Index when resolving many
// entries of the same set.
func (r *Resolver) AlternateURLs(e *content.Entry, all []*content.Entry, absolute bool) (Alternates, error) {
	return r.NewIndex(all).Alternates(e, absolute)
}

// UnrecognizedAlternates lists the explicit alternate keys of e that
// Alternates ignores.
func (r *Resolver) UnrecognizedAlternates(e *content.Entry) []string {
	locale := r.LocaleFromID(e.ID)
	slug := r.URLSlug(e)

	out := make([]string, 0)
	for _, key := range slices.Sorted(maps.Keys(e.Data.Alternates)) {
		value := e.Data.Alternates[key]
		if key == locale || IsExternal(value) || r.reg.IsValid(key) || isSelfAlias(key, value, slug) {
			continue
		}
		out = append(out, key)
	}
	return out
}

func isSelfAlias(key, value, slug string) bool {
	if !aliasKey.MatchString(key) {
		return false
	}
	v := CleanSlug(value)
	return v == "" || v == slug
}
