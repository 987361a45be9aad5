package sitemap

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/olimci/kotoba/pkg/i18n"
	"github.com/olimci/kotoba/pkg/utils/lazy"
)

// Entry is one <url> of the sitemap.
type Entry struct {
	Loc     string
	LastMod time.Time
	// Links are the hreflang alternates, x-default included.
	Links []i18n.Alternate
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

var sitemapTemplate = lazy.New(func() *template.Template {
	return template.Must(template.New("sitemap.xml").Funcs(template.FuncMap{
		"xml": Escape,
	}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:xhtml="http://www.w3.org/1999/xhtml">
{{- range . }}
  <url>
    <loc>{{ xml .Loc }}</loc>
{{- if not .LastMod.IsZero }}
    <lastmod>{{ .LastMod.Format "2006-01-02" }}</lastmod>
{{- end }}
{{- range .Links }}
    <xhtml:link rel="alternate" hreflang="{{ xml .Key }}" href="{{ xml .URL }}" />
{{- end }}
  </url>
{{- end }}
</urlset>
`))
})

// Build resolves one Entry per non-draft page of ix, ordered by Loc.
func Build(ix *i18n.Index) ([]Entry, error) {
	r := ix.Resolver()

	out := make([]Entry, 0, len(ix.Entries()))
	for _, e := range ix.Entries() {
		loc := r.AbsolutePageURL(e)

		alts, err := ix.Alternates(e, true)
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Loc:     loc,
			LastMod: e.Data.UpdatedAt.Time,
			Links:   r.HeadLinks(loc, alts),
		})
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Loc, b.Loc)
	})

	return out, nil
}

// Write renders entries as a sitemap with xhtml:link alternates.
func Write(w io.Writer, entries []Entry) error {
	if err := sitemapTemplate.Get().Execute(w, entries); err != nil {
		return fmt.Errorf("render sitemap: %w", err)
	}
	return nil
}

// WriteRobots renders an allow-all robots.txt pointing at the sitemap. An
// empty sitemapPath leaves the Sitemap line out.
func WriteRobots(w io.Writer, siteURL, sitemapPath string) error {
	if _, err := io.WriteString(w, "# Robots.txt\n# https://www.robotstxt.org/\n\nUser-agent: *\nAllow: /\n"); err != nil {
		return err
	}
	if sitemapPath == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n# Sitemap\nSitemap: %s/%s\n",
		strings.TrimSuffix(siteURL, "/"), strings.TrimPrefix(sitemapPath, "/"))
	return err
}
