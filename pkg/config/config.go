package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/olimci/kotoba/pkg/i18n"
	"github.com/olimci/kotoba/pkg/version"
	"golang.org/x/text/language"
)

const DefaultPath = "kotoba.toml"

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the configuration of a kotoba site.
type Config struct {
	Kotoba  ConfigKotoba  `toml:"kotoba" yaml:"kotoba" json:"kotoba"`
	Site    ConfigSite    `toml:"site" yaml:"site" json:"site"`
	I18n    ConfigI18n    `toml:"i18n" yaml:"i18n" json:"i18n"`
	Content ConfigContent `toml:"content" yaml:"content" json:"content"`
	Build   ConfigBuild   `toml:"build" yaml:"build" json:"build"`
	Checks  ConfigChecks  `toml:"checks" yaml:"checks" json:"checks"`
}

type ConfigKotoba struct {
	Version string `toml:"version" yaml:"version" json:"version"`
}

type ConfigSite struct {
	Title string `toml:"title" yaml:"title" json:"title"`
	URL   string `toml:"url" yaml:"url" json:"url"`
}

type ConfigI18n struct {
	Locales       []string          `toml:"locales" yaml:"locales" json:"locales"`
	DefaultLocale string            `toml:"default_locale" yaml:"default_locale" json:"default_locale"`
	Domains       map[string]string `toml:"domains" yaml:"domains" json:"domains"`
	Labels        map[string]string `toml:"labels" yaml:"labels" json:"labels"`
}

type ConfigContent struct {
	Source          string             `toml:"source" yaml:"source" json:"source"`
	Pattern         string             `toml:"pattern" yaml:"pattern" json:"pattern"`
	CollectionsRoot string             `toml:"collections_root" yaml:"collections_root" json:"collections_root"`
	Collections     []ConfigCollection `toml:"collections" yaml:"collections" json:"collections"`
}

type ConfigCollection struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	// Slug is the URL prefix of the collection's items. Unset means the
	// collection name; an empty string means no prefix.
	Slug *string `toml:"slug" yaml:"slug" json:"slug"`
	Page string  `toml:"page" yaml:"page" json:"page"`
}

type ConfigBuild struct {
	Output  string `toml:"output" yaml:"output" json:"output"`
	Minify  bool   `toml:"minify" yaml:"minify" json:"minify"`
	Workers int    `toml:"workers" yaml:"workers" json:"workers"`

	Sitemap    ConfigOutput `toml:"sitemap" yaml:"sitemap" json:"sitemap"`
	Robots     ConfigOutput `toml:"robots" yaml:"robots" json:"robots"`
	Alternates ConfigOutput `toml:"alternates" yaml:"alternates" json:"alternates"`
}

type ConfigOutput struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Output  string `toml:"output" yaml:"output" json:"output"`
}

type ConfigChecks struct {
	Enabled         bool     `toml:"enabled" yaml:"enabled" json:"enabled"`
	FailOnError     bool     `toml:"fail_on_error" yaml:"fail_on_error" json:"fail_on_error"`
	Disable         []string `toml:"disable" yaml:"disable" json:"disable"`
	InternalOrigins []string `toml:"internal_origins" yaml:"internal_origins" json:"internal_origins"`
}

// DefaultConfig constructs a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Kotoba: ConfigKotoba{
			Version: version.String(),
		},
		Site: ConfigSite{
			URL: "https://example.com",
		},
		I18n: ConfigI18n{
			Locales: []string{"en"},
		},
		Content: ConfigContent{
			Source:          "content",
			Pattern:         "**/*.{md,mdx}",
			CollectionsRoot: i18n.DefaultCollectionsRoot,
		},
		Build: ConfigBuild{
			Output:     "dist",
			Sitemap:    ConfigOutput{Enabled: true, Output: "sitemap.xml"},
			Robots:     ConfigOutput{Enabled: true, Output: "robots.txt"},
			Alternates: ConfigOutput{Enabled: false, Output: "alternates.json"},
		},
		Checks: ConfigChecks{
			Enabled:     true,
			FailOnError: true,
		},
	}
}

// Load loads a Config from a TOML, YAML or JSON file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := decodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the Config and fills in defaults. The default locale is
// moved to the front of I18n.Locales.
func (c *Config) Validate() error {
	if v := strings.TrimSpace(c.Kotoba.Version); v != "" {
		parsed, err := version.Parse(v)
		if err != nil {
			return invalid("kotoba.version: %v", err)
		}
		if !parsed.Compatible() {
			return invalid("kotoba.version %s is not supported by kotoba %s", parsed, version.String())
		}
	}

	c.Site.URL = strings.TrimSpace(c.Site.URL)
	if err := checkURL("site.url", c.Site.URL); err != nil {
		return err
	}

	reg, err := c.Registry()
	if err != nil {
		return fmt.Errorf("%w: i18n: %w", ErrInvalidConfig, err)
	}
	c.I18n.Locales = reg.Locales()
	c.I18n.DefaultLocale = reg.Default()

	for locale, domain := range c.I18n.Domains {
		if !reg.IsValid(locale) {
			return invalid("i18n.domains: unknown locale %q", locale)
		}
		if err := checkURL("i18n.domains."+locale, domain); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.Content.Source) == "" {
		c.Content.Source = "content"
	}
	if strings.TrimSpace(c.Content.Pattern) == "" {
		c.Content.Pattern = "**/*.{md,mdx}"
	}
	if !doublestar.ValidatePattern(c.Content.Pattern) {
		return invalid("content.pattern %q is not a valid glob", c.Content.Pattern)
	}
	if i18n.CleanSlug(c.Content.CollectionsRoot) == "" {
		c.Content.CollectionsRoot = i18n.DefaultCollectionsRoot
	}

	seen := make(map[string]struct{}, len(c.Content.Collections))
	for i, coll := range c.Content.Collections {
		name := strings.TrimSpace(coll.Name)
		if name == "" || strings.Contains(name, "/") {
			return invalid("content.collections[%d]: invalid name %q", i, coll.Name)
		}
		if _, dup := seen[name]; dup {
			return invalid("content.collections: duplicate collection %q", name)
		}
		seen[name] = struct{}{}
		c.Content.Collections[i].Name = name
	}

	if strings.TrimSpace(c.Build.Output) == "" {
		c.Build.Output = "dist"
	}
	if c.Build.Workers < 0 {
		return invalid("build.workers must not be negative (got %d)", c.Build.Workers)
	}
	defaultOutput(&c.Build.Sitemap, "sitemap.xml")
	defaultOutput(&c.Build.Robots, "robots.txt")
	defaultOutput(&c.Build.Alternates, "alternates.json")

	for _, origin := range c.Checks.InternalOrigins {
		if err := checkURL("checks.internal_origins", origin); err != nil {
			return err
		}
	}

	if _, err := c.Resolver(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func defaultOutput(o *ConfigOutput, name string) {
	if strings.TrimSpace(o.Output) == "" {
		o.Output = name
	}
}

func checkURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid("%s is required", field)
	}
	if !i18n.IsExternal(raw) {
		return invalid("%s must start with http:// or https:// (got %q)", field, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid URL (got %q): %w", ErrInvalidConfig, field, raw, err)
	}
	if u.Host == "" {
		return invalid("%s has no host (got %q)", field, raw)
	}
	return nil
}

// Warnings lists problems that do not stop a build.
func (c *Config) Warnings() []string {
	var out []string

	for _, code := range c.I18n.Locales {
		if _, err := language.Parse(code); err != nil {
			out = append(out, fmt.Sprintf("locale %q is not a well-formed BCP 47 tag", code))
		}
	}

	known := make(map[string]struct{}, len(c.I18n.Locales))
	for _, code := range c.I18n.Locales {
		known[code] = struct{}{}
	}
	for _, code := range slices.Sorted(maps.Keys(c.I18n.Labels)) {
		if _, ok := known[code]; !ok {
			out = append(out, fmt.Sprintf("label for unknown locale %q", code))
		}
	}

	return out
}

// Registry builds the locale registry described by the config.
func (c *Config) Registry() (*i18n.Registry, error) {
	return i18n.NewRegistry(c.I18n.Locales, c.I18n.DefaultLocale)
}

// Resolver builds the slug and URL resolver described by the config.
func (c *Config) Resolver() (*i18n.Resolver, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}

	collections := make([]i18n.Collection, len(c.Content.Collections))
	for i, coll := range c.Content.Collections {
		prefix := coll.Name
		if coll.Slug != nil {
			prefix = *coll.Slug
		}
		collections[i] = i18n.Collection{Name: coll.Name, Prefix: prefix, Page: coll.Page}
	}

	return i18n.NewResolver(reg, i18n.Options{
		SiteURL:         c.Site.URL,
		Domains:         c.I18n.Domains,
		Collections:     collections,
		CollectionsRoot: c.Content.CollectionsRoot,
	})
}

// InternalOrigins are the origins whose pages are part of this build: the
// site, every locale domain and any configured extras.
func (c *Config) InternalOrigins() []string {
	r, err := c.Resolver()
	if err != nil {
		return c.Checks.InternalOrigins
	}

	out := r.Origins()
	for _, raw := range c.Checks.InternalOrigins {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Host == "" {
			continue
		}
		o := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
		if !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}
