package build

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olimci/kotoba/pkg/checks"
	"github.com/olimci/kotoba/pkg/config"
	"github.com/olimci/kotoba/pkg/content"
	"github.com/olimci/kotoba/pkg/i18n"
	"github.com/olimci/kotoba/pkg/manifest"
	"github.com/olimci/kotoba/pkg/sitemap"
)

const (
	// internal keys
	ConfigK  = manifest.K[*config.Config]("config")
	OptionsK = manifest.K[*Options]("options")
	SourceK  = manifest.K[string]("source")

	// content keys
	EntriesK  = manifest.K[[]*content.Entry]("entries")
	ResolverK = manifest.K[*i18n.Resolver]("resolver")
	IndexK    = manifest.K[*i18n.Index]("index")
	PagesK    = manifest.K[[]Page]("pages")

	// output keys
	SitemapK = manifest.K[[]sitemap.Entry]("sitemap")
	ReportK  = manifest.K[*checks.Report]("report")
)

const (
	StepContentLoad    = "content:load"
	StepContentResolve = "content:resolve"
	StepContentChecks  = "checks:content"
	StepSitemap        = "sitemap"
	StepRobots         = "robots"
	StepAlternates     = "alternates"
)

// Page is a resolved page as exported to alternates.json.
type Page struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Locale     string            `json:"locale"`
	Page       string            `json:"page"`
	Hreflang   string            `json:"hreflang"`
	URL        string            `json:"url"`
	Canonical  string            `json:"canonical"`
	Alternates map[string]string `json:"alternates"`
	Missing    []string          `json:"missing"`
	Head       string            `json:"head"`
}

// Steps returns the steps of a build.
func Steps() []Step {
	return []Step{
		StepLoad(),
		StepResolve(),
		StepChecks(),
		StepSitemapXML(),
		StepRobotsTxt(),
		StepAlternatesJSON(),
	}
}

func StepLoad() Step {
	return StepFunc(StepContentLoad, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		source := manifest.GetAs(sc.Manifest, SourceK)

		entries, err := content.Load(sc.Ctx, os.DirFS(source), content.LoadOptions{
			Pattern: cfg.Content.Pattern,
			Workers: sc.Options.maxWorkers,
		})
		if err != nil {
			return fmt.Errorf("load content from %s: %w", source, err)
		}

		drafts := len(entries) - len(content.Published(entries))
		sc.Debugf(source, "loaded %d entries (%d drafts)", len(entries), drafts)

		manifest.SetAs(sc.Manifest, EntriesK, entries)
		return nil
	})
}

func StepResolve() Step {
	return StepFunc(StepContentResolve, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		entries := manifest.GetAs(sc.Manifest, EntriesK)

		for _, w := range cfg.Warnings() {
			sc.Warn("config", w, nil)
		}

		r, err := cfg.Resolver()
		if err != nil {
			return err
		}

		ix := r.NewIndex(entries)
		reg := r.Registry()

		for _, c := range ix.Collisions() {
			if err := sc.Errorf(c.Shadowed.Source, "resolves to %s, already used by %s", c.URL, c.Kept.Source); err != nil {
				return err
			}
		}

		pages := make([]Page, 0, len(ix.Entries()))
		for _, e := range ix.Entries() {
			for _, key := range r.UnrecognizedAlternates(e) {
				sc.Warnf(e.Source, "unrecognized alternate key %q is ignored", key)
			}

			alts, err := ix.Alternates(e, true)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Source, err)
			}

			canonical := r.AbsolutePageURL(e)
			head, err := r.Head(canonical, alts)
			if err != nil {
				return fmt.Errorf("%s: render head: %w", e.Source, err)
			}

			locale := r.LocaleFromID(e.ID)
			missing := r.MissingLocales(alts)
			if len(missing) > 0 && len(missing) < len(reg.Locales())-1 {
				sc.Debugf(e.Source, "no page for locales %v", missing)
			}

			pages = append(pages, Page{
				ID:         e.ID,
				Source:     e.Source,
				Locale:     locale,
				Page:       r.PageType(e),
				Hreflang:   i18n.ToHreflang(locale),
				URL:        r.PageURL(e),
				Canonical:  canonical,
				Alternates: alts,
				Missing:    missing,
				Head:       head,
			})
		}

		sc.Infof("content", "resolved %d pages in %d locales", len(pages), len(reg.Locales()))

		manifest.SetAs(sc.Manifest, ResolverK, r)
		manifest.SetAs(sc.Manifest, IndexK, ix)
		manifest.SetAs(sc.Manifest, PagesK, pages)
		return nil
	}, StepContentLoad)
}

func StepChecks() Step {
	return StepFunc(StepContentChecks, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		r := manifest.GetAs(sc.Manifest, ResolverK)
		entries := manifest.GetAs(sc.Manifest, EntriesK)

		warnUnknownChecks(sc, cfg.Checks.Disable)

		runner := checks.NewRunner(sc.Options.checkOut,
			checks.WithEnabled(cfg.Checks.Enabled && !sc.Options.noChecks),
			checks.WithDisabled(cfg.Checks.Disable...),
		)

		report, err := runner.Run(checks.FromEntries(r, entries))
		manifest.SetAs(sc.Manifest, ReportK, report)
		if err == nil {
			return nil
		}

		for _, e := range report.Errors() {
			sc.Debug(e.File, e.Check+": "+e.Message)
		}

		if !cfg.Checks.FailOnError {
			sc.Warn("checks", "hreflang checks failed", err)
			return nil
		}
		return sc.Error("checks", "hreflang checks failed", err)
	}, StepContentResolve)
}

func StepSitemapXML() Step {
	return StepFunc(StepSitemap, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		ix := manifest.GetAs(sc.Manifest, IndexK)

		entries, err := sitemap.Build(ix)
		if err != nil {
			return err
		}
		manifest.SetAs(sc.Manifest, SitemapK, entries)

		if !cfg.Build.Sitemap.Enabled {
			return nil
		}

		sc.Manifest.Emit(manifest.Artefact{
			Claim: manifest.NewClaim(sc.StepID, cfg.Build.Sitemap.Output),
			Builder: func(w io.Writer) error {
				return sitemap.Write(w, entries)
			},
		}.Post(NewMinifier(cfg.Build.Minify)))

		return nil
	}, StepContentResolve)
}

func StepRobotsTxt() Step {
	return StepFunc(StepRobots, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		if !cfg.Build.Robots.Enabled {
			return nil
		}

		sitemapPath := cfg.Build.Sitemap.Output
		if !cfg.Build.Sitemap.Enabled {
			sitemapPath = ""
		}

		sc.Manifest.Emit(manifest.Artefact{
			Claim: manifest.NewClaim(sc.StepID, cfg.Build.Robots.Output),
			Builder: func(w io.Writer) error {
				return sitemap.WriteRobots(w, cfg.Site.URL, sitemapPath)
			},
		})

		return nil
	})
}

type alternatesLocale struct {
	Code     string `json:"code"`
	Hreflang string `json:"hreflang"`
	Label    string `json:"label,omitempty"`
	Origin   string `json:"origin"`
}

type alternatesFile struct {
	Site          string             `json:"site"`
	DefaultLocale string             `json:"defaultLocale"`
	Locales       []alternatesLocale `json:"locales"`
	Pages         []Page             `json:"pages"`
}

func StepAlternatesJSON() Step {
	return StepFunc(StepAlternates, func(sc *StepContext) error {
		cfg := manifest.GetAs(sc.Manifest, ConfigK)
		if !cfg.Build.Alternates.Enabled {
			return nil
		}

		r := manifest.GetAs(sc.Manifest, ResolverK)
		reg := r.Registry()

		doc := alternatesFile{
			Site:          r.SiteURL(),
			DefaultLocale: reg.Default(),
			Pages:         manifest.GetAs(sc.Manifest, PagesK),
		}
		for _, code := range reg.Locales() {
			doc.Locales = append(doc.Locales, alternatesLocale{
				Code:     code,
				Hreflang: i18n.ToHreflang(code),
				Label:    cfg.I18n.Labels[code],
				Origin:   r.LocaleOrigin(code),
			})
		}

		sc.Manifest.Emit(manifest.Artefact{
			Claim: manifest.NewClaim(sc.StepID, cfg.Build.Alternates.Output),
			Builder: func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			},
		}.Post(NewMinifier(cfg.Build.Minify)))

		return nil
	}, StepContentResolve)
}
