package i18n

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/olimci/kotoba/pkg/content"
)

const DefaultCollectionsRoot = "_collections"

// Page types resolved by PageType when the frontmatter names none.
const (
	PageHome       = "home"
	PageArticle    = "article"
	PageCollection = "item"
)

// Collection maps ids under <root>/<Name>/<item> to <Prefix>/<item>.
type Collection struct {
	Name   string
	Prefix string
	// Page is the page type of the collection's items.
	Page string
}

type Options struct {
	SiteURL         string
	Domains         map[string]string
	Collections     []Collection
	CollectionsRoot string
}

// Resolver derives locales, slugs and URLs for content entries under one
// site configuration.
type Resolver struct {
	reg         *Registry
	site        string
	siteOrigin  string
	domains     map[string]string
	collections map[string]Collection
	root        string
}

func NewResolver(reg *Registry, opts Options) (*Resolver, error) {
	if reg == nil {
		return nil, configErrorf("nil registry")
	}

	site, err := parseOrigin(opts.SiteURL)
	if err != nil {
		return nil, configErrorf("site url: %v", err)
	}

	r := &Resolver{
		reg:         reg,
		site:        strings.TrimSuffix(strings.TrimSpace(opts.SiteURL), "/"),
		siteOrigin:  site,
		domains:     make(map[string]string, len(opts.Domains)),
		collections: make(map[string]Collection, len(opts.Collections)),
		root:        CleanSlug(opts.CollectionsRoot),
	}
	if r.root == "" {
		r.root = DefaultCollectionsRoot
	}

	for locale, domain := range opts.Domains {
		if !reg.IsValid(locale) {
			return nil, configErrorf("domain configured for unknown locale %q", locale)
		}
		if _, err := parseOrigin(domain); err != nil {
			return nil, configErrorf("domain for %q: %v", locale, err)
		}
		r.domains[locale] = strings.TrimSuffix(strings.TrimSpace(domain), "/")
	}

	for _, c := range opts.Collections {
		if c.Name == "" {
			return nil, configErrorf("collection with empty name")
		}
		if _, dup := r.collections[c.Name]; dup {
			return nil, configErrorf("duplicate collection %q", c.Name)
		}
		c.Prefix = CleanSlug(c.Prefix)
		r.collections[c.Name] = c
	}

	return r, nil
}

func parseOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !IsExternal(raw) {
		return "", fmt.Errorf("%q must start with http:// or https://", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q has no host", raw)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func (r *Resolver) Registry() *Registry {
	return r.reg
}

// SiteURL is the configured site URL without a trailing slash.
func (r *Resolver) SiteURL() string {
	return r.site
}

// Origins lists the site origin followed by the distinct per-locale domain
// origins.
func (r *Resolver) Origins() []string {
	out := []string{r.siteOrigin}
	for _, locale := range r.reg.locales {
		d, ok := r.domains[locale]
		if !ok {
			continue
		}
		if o, _ := parseOrigin(d); !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}

// IsExternal reports whether v is a fully-qualified http(s) URL.
func IsExternal(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// CleanSlug trims whitespace and surrounding slashes.
func CleanSlug(s string) string {
	return strings.Trim(strings.TrimSpace(strings.ReplaceAll(s, "\\", "/")), "/")
}

// LocaleFromID returns the first segment of id when it is a registered
// locale, otherwise the default locale.
func (r *Resolver) LocaleFromID(id string) string {
	first, _, _ := strings.Cut(id, "/")
	if r.reg.IsValid(first) {
		return first
	}
	return r.reg.Default()
}

// BasePath is the locale-independent join key for id.
func (r *Resolver) BasePath(id string) string {
	path := id
	if locale := r.LocaleFromID(id); locale != r.reg.Default() {
		path = strings.TrimPrefix(path, locale+"/")
	}

	if path == "index" {
		return ""
	}
	return strings.TrimSuffix(path, "/index")
}

// CollectionRoute reports the collection and item slug of id, when id lives
// under the collections root of a registered collection.
func (r *Resolver) CollectionRoute(id string) (Collection, string, bool) {
	rest, ok := strings.CutPrefix(r.BasePath(id), r.root+"/")
	if !ok {
		return Collection{}, "", false
	}

	name, item, ok := strings.Cut(rest, "/")
	if !ok || name == "" || item == "" || strings.Contains(item, "/") {
		return Collection{}, "", false
	}

	c, ok := r.collections[name]
	if !ok {
		return Collection{}, "", false
	}
	return c, item, true
}

// URLSlug picks the permalink, then the collection route, then the base path.
func (r *Resolver) URLSlug(e *content.Entry) string {
	if p := strings.TrimSpace(e.Data.Permalink); p != "" {
		return CleanSlug(p)
	}

	if c, item, ok := r.CollectionRoute(e.ID); ok {
		if c.Prefix == "" {
			return item
		}
		return c.Prefix + "/" + item
	}

	return r.BasePath(e.ID)
}

// PageType names the kind of page e is: the page frontmatter field, else
// home for the root page, else the type of its collection, else article.
func (r *Resolver) PageType(e *content.Entry) string {
	if p := normalizePageType(e.Data.Page); p != "" {
		return p
	}
	if r.BasePath(e.ID) == "" || strings.TrimSpace(e.Data.Permalink) == "/" {
		return PageHome
	}
	if c, _, ok := r.CollectionRoute(e.ID); ok {
		if p := normalizePageType(c.Page); p != "" {
			return p
		}
		return PageCollection
	}
	return PageArticle
}

func normalizePageType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RelativeURL builds a root-relative path with a trailing slash. The default
// locale is unprefixed.
func (r *Resolver) RelativeURL(locale, slug string) string {
	var b strings.Builder
	b.WriteByte('/')
	if locale != r.reg.Default() {
		b.WriteString(locale)
		b.WriteByte('/')
	}
	if slug = escapeSlug(slug); slug != "" {
		b.WriteString(slug)
		b.WriteByte('/')
	}
	return b.String()
}

// escapeSlug percent-encodes each segment of slug. Segments that are
// already encoded are decoded first, so escaping twice changes nothing.
func escapeSlug(slug string) string {
	slug = CleanSlug(slug)
	if slug == "" {
		return ""
	}

	segments := strings.Split(slug, "/")
	for i, seg := range segments {
		if raw, err := url.PathUnescape(seg); err == nil {
			seg = raw
		}
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// LocaleOrigin returns the configured domain for locale, or the site URL.
func (r *Resolver) LocaleOrigin(locale string) string {
	if d, ok := r.domains[locale]; ok {
		return d
	}
	return r.site
}

// AbsoluteURL resolves locale and slug against the locale's origin. A
// locale served from its own domain drops the locale prefix.
func (r *Resolver) AbsoluteURL(locale, slug string) string {
	if d, ok := r.domains[locale]; ok {
		if o, _ := parseOrigin(d); o != r.siteOrigin {
			slug = escapeSlug(slug)
			if slug == "" {
				return d + "/"
			}
			return d + "/" + slug + "/"
		}
	}
	return r.LocaleOrigin(locale) + r.RelativeURL(locale, slug)
}

func (r *Resolver) URL(locale, slug string, absolute bool) string {
	if absolute {
		return r.AbsoluteURL(locale, slug)
	}
	return r.RelativeURL(locale, slug)
}

func (r *Resolver) PageURL(e *content.Entry) string {
	return r.RelativeURL(r.LocaleFromID(e.ID), r.URLSlug(e))
}

func (r *Resolver) AbsolutePageURL(e *content.Entry) string {
	return r.AbsoluteURL(r.LocaleFromID(e.ID), r.URLSlug(e))
}
