package build

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olimci/kotoba/pkg/checks"
)

// renderPages writes a minimal HTML file per page, carrying the head tags
// the build resolved for it.
func renderPages(t *testing.T, dir string, pages []Page) {
	t.Helper()

	for _, p := range pages {
		full := filepath.Join(dir, filepath.FromSlash(strings.Trim(p.URL, "/")), "index.html")
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		html := "<!doctype html><html><head>\n" + p.Head + "</head><body></body></html>\n"
		if err := os.WriteFile(full, []byte(html), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCheck(t *testing.T) {
	path := writeSite(t, siteConfig, mutualSite())

	res, err := Build(WithConfig(path))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	renderPages(t, res.Output, res.Pages)

	checked, err := Check(WithConfig(path))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if checked.Scanned != 4 || checked.Linked != 4 {
		t.Errorf("scanned %d, linked %d, want 4 and 4", checked.Scanned, checked.Linked)
	}
	if checked.External != 0 || len(checked.Report.Errors()) != 0 {
		t.Errorf("unexpected result %+v", checked)
	}

	broken := `<html><head>
<link rel="canonical" href="https://example.com/ru/o-nas/">
<link rel="alternate" hreflang="ru" href="https://example.com/ru/o-nas/">
<link rel="alternate" hreflang="de" href="https://example.de/ueber-uns/">
</head></html>`
	if err := os.WriteFile(filepath.Join(res.Output, "ru", "o-nas", "index.html"), []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	checked, err = Check(WithConfig(path))
	if !errors.Is(err, checks.ErrChecksFailed) {
		t.Fatalf("Check() = %v, want ErrChecksFailed", err)
	}
	if checked.External != 1 || len(checked.ExternalOrigins) != 1 || checked.ExternalOrigins[0] != "https://example.de" {
		t.Errorf("external = %d %v", checked.External, checked.ExternalOrigins)
	}
}

func TestCheckMissingOutput(t *testing.T) {
	path := writeSite(t, siteConfig, mutualSite())

	if _, err := Check(WithConfig(path), WithOutput(filepath.Join(t.TempDir(), "missing"))); err == nil {
		t.Error("Check succeeded without an output directory")
	}
}
