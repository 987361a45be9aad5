package checks

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/olimci/kotoba/pkg/content"
	"github.com/olimci/kotoba/pkg/i18n"
)

func newResolver(t *testing.T) *i18n.Resolver {
	t.Helper()

	reg, err := i18n.NewRegistry([]string{"en", "ru", "de"}, "en")
	if err != nil {
		t.Fatal(err)
	}
	r, err := i18n.NewResolver(reg, i18n.Options{SiteURL: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func entry(id string, alternates map[string]string) *content.Entry {
	return &content.Entry{ID: id, Data: content.Data{Title: id, Alternates: alternates}}
}

func TestBidirectionalEntries(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name    string
		entries []*content.Entry
		want    []string
	}{
		{
			name: "mutual",
			entries: []*content.Entry{
				entry("about", map[string]string{"ru": "o-nas"}),
				entry("ru/o-nas", map[string]string{"en": "about"}),
			},
		},
		{
			name: "wrong back link",
			entries: []*content.Entry{
				entry("about", map[string]string{"ru": "o-nas"}),
				entry("ru/o-nas", map[string]string{"en": "wrong-slug"}),
			},
			want: []string{"about"},
		},
		{
			name: "target has no alternates",
			entries: []*content.Entry{
				entry("about", map[string]string{"ru": "o-nas"}),
				entry("ru/o-nas", nil),
			},
			want: []string{"about"},
		},
		{
			name: "no back link for locale",
			entries: []*content.Entry{
				entry("about", map[string]string{"ru": "o-nas"}),
				entry("ru/o-nas", map[string]string{"de": "ueber"}),
				entry("de/ueber", map[string]string{"ru": "o-nas"}),
			},
			want: []string{"about"},
		},
		{
			name: "same url twice",
			entries: []*content.Entry{
				entry("about", nil),
				func() *content.Entry {
					e := entry("company", nil)
					e.Data.Permalink = "/about/"
					return e
				}(),
			},
			want: []string{"company"},
		},
		{
			name: "externals, aliases and drafts are skipped",
			entries: []*content.Entry{
				entry("about", map[string]string{"fr": "https://partner.example/a-propos", "en-US": "", "ru": "o-nas"}),
				func() *content.Entry {
					e := entry("ru/o-nas", nil)
					e.Data.Draft = true
					return e
				}(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Bidirectional().Run(FromEntries(r, tt.entries))
			if len(errs) != len(tt.want) {
				t.Fatalf("got %d errors %v, want %d", len(errs), errs, len(tt.want))
			}
			for i, file := range tt.want {
				if errs[i].File != file || errs[i].Check != NameBidirectional {
					t.Errorf("errs[%d] = %+v, want file %q", i, errs[i], file)
				}
			}
		})
	}
}

func TestConsistentExternalsEntries(t *testing.T) {
	r := newResolver(t)

	matching := []*content.Entry{
		entry("about", map[string]string{"ru": "o-nas", "fr": "https://partner.example/fr/"}),
		entry("ru/o-nas", map[string]string{"en": "about", "fr": "https://partner.example/fr/"}),
	}
	if errs := ConsistentExternals().Run(FromEntries(r, matching)); len(errs) != 0 {
		t.Errorf("unexpected errors %v", errs)
	}

	mismatched := []*content.Entry{
		entry("about", map[string]string{"ru": "o-nas", "fr": "https://partner.example/fr/"}),
		entry("ru/o-nas", map[string]string{"en": "about"}),
		entry("de/ueber", map[string]string{"en": "about", "fr": "https://partner.example/other/"}),
	}
	errs := ConsistentExternals().Run(FromEntries(r, mismatched))
	if len(errs) != 2 {
		t.Fatalf("got %d errors %v, want 2", len(errs), errs)
	}
	if errs[0].File != "about" || !strings.Contains(errs[0].Message, `"ru/o-nas"`) {
		t.Errorf("errs[0] = %+v", errs[0])
	}
	if errs[1].File != "de/ueber" || !strings.Contains(errs[1].Message, `"about"`) {
		t.Errorf("errs[1] = %+v", errs[1])
	}
}

func TestRunner(t *testing.T) {
	r := newResolver(t)
	g := FromEntries(r, []*content.Entry{
		entry("about", map[string]string{"ru": "o-nas"}),
		entry("ru/o-nas", map[string]string{"en": "wrong-slug"}),
	})

	var out bytes.Buffer
	report, err := NewRunner(&out).Run(g)

	var failed *FailedError
	if !errors.As(err, &failed) || !errors.Is(err, ErrChecksFailed) {
		t.Fatalf("Run() error = %v, want FailedError", err)
	}
	if failed.Failed != 1 || len(failed.Errors) != 1 {
		t.Errorf("FailedError = %+v", failed)
	}
	if err.Error() != "build checks failed with 1 error(s)" {
		t.Errorf("Error() = %q", err.Error())
	}
	if len(report.Results) != 2 {
		t.Errorf("ran %d checks, want 2", len(report.Results))
	}

	text := out.String()
	for _, want := range []string{
		"Running build checks...",
		"  ✗ hreflang-bidirectional (",
		"    → about: ",
		"  ✓ hreflang-consistent-externals (",
		"1 check(s) failed (1 errors)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("colors written to a non-terminal")
	}

	out.Reset()
	report, err = NewRunner(&out, WithDisabled(NameBidirectional)).Run(g)
	if err != nil {
		t.Errorf("disabled check still failed: %v", err)
	}
	if len(report.Results) != 1 || !strings.Contains(out.String(), "All checks passed! (1 checks)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	report, err = NewRunner(&out, WithEnabled(false)).Run(g)
	if err != nil || len(report.Results) != 0 || out.Len() != 0 {
		t.Errorf("disabled runner ran: %v %v %q", report, err, out.String())
	}
}

func TestRunnerCustomChecks(t *testing.T) {
	var order []string
	mk := func(name string, n int) Check {
		return Check{Name: name, Run: func(*Graph) []Error {
			order = append(order, name)
			return make([]Error, n)
		}}
	}

	_, err := NewRunner(nil, WithChecks(mk("a", 0), mk("b", 2), mk("c", 1))).Run(FromHTML(nil, nil))

	var failed *FailedError
	if !errors.As(err, &failed) || failed.Failed != 2 || len(failed.Errors) != 3 {
		t.Errorf("Run() error = %v", err)
	}
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("checks ran in order %v", order)
	}
}

func TestKnown(t *testing.T) {
	if !Known(NameBidirectional) || !Known(NameConsistentExternals) || Known("spelling") {
		t.Error("unexpected Known result")
	}
}
