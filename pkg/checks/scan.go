package checks

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"

	"github.com/olimci/kotoba/pkg/utils/fileutils"
	"golang.org/x/sync/errgroup"
)

// Only two tag shapes are recognised, in any attribute order.
var (
	alternateTag = regexp.MustCompile(`(?i)<link[^>]*\srel=["']alternate["'][^>]*>`)
	hreflangAttr = regexp.MustCompile(`(?i)\shreflang=["']([^"']+)["']`)
	hrefAttr     = regexp.MustCompile(`(?i)\shref=["']([^"']+)["']`)

	canonicalRelFirst  = regexp.MustCompile(`(?i)<link[^>]*\srel=["']canonical["'][^>]*\shref=["']([^"']+)["'][^>]*>`)
	canonicalHrefFirst = regexp.MustCompile(`(?i)<link[^>]*\shref=["']([^"']+)["'][^>]*\srel=["']canonical["'][^>]*>`)
)

// ParseAlternateLinks extracts <link rel="alternate" hreflang href> tags.
func ParseAlternateLinks(html string) []Link {
	var links []Link
	for _, tag := range alternateTag.FindAllString(html, -1) {
		lang := hreflangAttr.FindStringSubmatch(tag)
		href := hrefAttr.FindStringSubmatch(tag)
		if lang == nil || href == nil {
			continue
		}
		links = append(links, Link{Hreflang: lang[1], Href: unescape(href[1])})
	}
	return links
}

// ParseCanonical extracts the href of <link rel="canonical">.
func ParseCanonical(html string) (string, bool) {
	if m := canonicalRelFirst.FindStringSubmatch(html); m != nil {
		return unescape(m[1]), true
	}
	if m := canonicalHrefFirst.FindStringSubmatch(html); m != nil {
		return unescape(m[1]), true
	}
	return "", false
}

var entities = strings.NewReplacer("&amp;", "&", "&#38;", "&", "&quot;", `"`, "&#34;", `"`, "&#39;", "'", "&lt;", "<", "&gt;", ">")

func unescape(s string) string {
	return entities.Replace(s)
}

// URLFromFile derives the URL of an output file that has no canonical
// link: ru/about/index.html is served at <site>/ru/about/.
func URLFromFile(siteURL, rel string) string {
	p := strings.TrimSuffix(rel, "index.html")
	if strings.HasSuffix(p, ".html") {
		p = strings.TrimSuffix(p, ".html") + "/"
	}
	return strings.TrimSuffix(siteURL, "/") + "/" + p
}

// Scan reads every .html file of fsys in parallel and returns one Page per
// file, in path order.
func Scan(ctx context.Context, fsys fs.FS, siteURL string, workers int) ([]*Page, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files, err := fileutils.WalkExtFS(fsys, ".", ".html")
	if err != nil {
		return nil, fmt.Errorf("walk output: %w", err)
	}

	pages := make([]*Page, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			b, err := fs.ReadFile(fsys, rel)
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			html := string(b)

			u, ok := ParseCanonical(html)
			if !ok {
				u = URLFromFile(siteURL, path.Clean(rel))
			}

			pages[i] = &Page{File: rel, URL: u, Links: ParseAlternateLinks(html)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// ScanDir is Scan over a directory on disk.
func ScanDir(ctx context.Context, dir, siteURL string, workers int) ([]*Page, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return Scan(ctx, os.DirFS(dir), siteURL, workers)
}
