package i18n

import (
	"html/template"
	"io"
	"strings"

	"github.com/olimci/kotoba/pkg/utils/lazy"
)

const XDefault = "x-default"

var headTemplate = lazy.New(func() *template.Template {
	return template.Must(template.New("head").Parse(
		`<link rel="canonical" href="{{ .Canonical }}">
{{ range .Links }}<link rel="alternate" hreflang="{{ .Key }}" href="{{ .URL }}">
{{ end }}`))
})

type headData struct {
	Canonical string
	Links     []Alternate
}

// HeadLinks lists the hreflang links for a page: every alternate with its
// key formatted by ToHreflang, plus x-default when there is more than one.
func (r *Resolver) HeadLinks(canonical string, a Alternates) []Alternate {
	sorted := a.Sorted(r.reg)

	links := make([]Alternate, 0, len(sorted)+1)
	for _, alt := range sorted {
		links = append(links, Alternate{Key: ToHreflang(alt.Key), URL: alt.URL})
	}

	if len(sorted) > 1 {
		def, ok := a[r.reg.Default()]
		if !ok {
			def = canonical
		}
		links = append(links, Alternate{Key: XDefault, URL: def})
	}

	return links
}

// WriteHead renders the canonical and alternate <link> tags of a page.
func (r *Resolver) WriteHead(w io.Writer, canonical string, a Alternates) error {
	return headTemplate.Get().Execute(w, headData{
		Canonical: canonical,
		Links:     r.HeadLinks(canonical, a),
	})
}

func (r *Resolver) Head(canonical string, a Alternates) (string, error) {
	var b strings.Builder
	if err := r.WriteHead(&b, canonical, a); err != nil {
		return "", err
	}
	return b.String(), nil
}
