package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/olimci/kotoba/pkg/content"
	"github.com/olimci/kotoba/pkg/i18n"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "kotoba.toml", `
[site]
title = "Example"
url = "https://example.com/"

[i18n]
locales = ["ru", "en", "de"]
default_locale = "en"
domains = { de = "https://example.de" }
labels = { en = "English", ru = "Русский" }

[[content.collections]]
name = "blog"
slug = "posts"

[[content.collections]]
name = "products"

[build]
output = "public"

[build.alternates]
enabled = true

[checks]
disable = ["hreflang-consistent-externals"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.I18n.Locales, []string{"en", "ru", "de"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Locales = %v, want %v", got, want)
	}
	if cfg.I18n.DefaultLocale != "en" {
		t.Errorf("DefaultLocale = %q", cfg.I18n.DefaultLocale)
	}
	if cfg.Build.Output != "public" {
		t.Errorf("Output = %q", cfg.Build.Output)
	}
	if !cfg.Build.Sitemap.Enabled || cfg.Build.Sitemap.Output != "sitemap.xml" {
		t.Errorf("sitemap defaults lost: %+v", cfg.Build.Sitemap)
	}
	if !cfg.Build.Alternates.Enabled || cfg.Build.Alternates.Output != "alternates.json" {
		t.Errorf("alternates = %+v", cfg.Build.Alternates)
	}
	if !cfg.Checks.Enabled || !cfg.Checks.FailOnError {
		t.Errorf("checks defaults lost: %+v", cfg.Checks)
	}
	if cfg.Content.Source != "content" || cfg.Content.CollectionsRoot != "_collections" {
		t.Errorf("content defaults lost: %+v", cfg.Content)
	}

	r, err := cfg.Resolver()
	if err != nil {
		t.Fatalf("Resolver: %v", err)
	}
	if got := r.AbsoluteURL("de", "ueber"); got != "https://example.de/ueber/" {
		t.Errorf("AbsoluteURL(de) = %q", got)
	}

	blog := &content.Entry{ID: "_collections/blog/hello"}
	if got := r.URLSlug(blog); got != "posts/hello" {
		t.Errorf("blog slug = %q, want posts/hello", got)
	}
	products := &content.Entry{ID: "_collections/products/widget"}
	if got := r.URLSlug(products); got != "products/widget" {
		t.Errorf("products slug = %q, want products/widget", got)
	}

	if got, want := cfg.InternalOrigins(), []string{"https://example.com", "https://example.de"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InternalOrigins() = %v, want %v", got, want)
	}
}

func TestLoadFormats(t *testing.T) {
	yamlPath := writeConfig(t, "kotoba.yaml", `
site:
  url: https://example.com
i18n:
  locales: [en, ru]
content:
  collections:
    - name: blog
      slug: ""
`)
	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if coll := cfg.Content.Collections[0]; coll.Slug == nil || *coll.Slug != "" {
		t.Errorf("empty slug not preserved: %+v", coll)
	}

	jsonPath := writeConfig(t, "kotoba.json", `{
  "site": {"url": "https://example.com"},
  "i18n": {"locales": ["en", "ru"], "default_locale": "ru"}
}`)
	cfg, err = Load(jsonPath)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	if got, want := cfg.I18n.Locales, []string{"ru", "en"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Locales = %v, want %v", got, want)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	files := map[string]string{
		"kotoba.toml": "[site]\nurl = \"https://example.com\"\nlanguage = \"en\"\n",
		"kotoba.yaml": "site:\n  url: https://example.com\n  language: en\n",
		"kotoba.json": `{"site": {"url": "https://example.com", "language": "en"}}`,
	}
	for name, body := range files {
		if _, err := Load(writeConfig(t, name, body)); !errors.Is(err, ErrUnknownKeys) {
			t.Errorf("%s: error = %v, want ErrUnknownKeys", name, err)
		}
	}

	if _, err := Load(writeConfig(t, "kotoba.ini", "")); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing url", func(c *Config) { c.Site.URL = "" }, ErrInvalidConfig},
		{"relative url", func(c *Config) { c.Site.URL = "example.com" }, ErrInvalidConfig},
		{"no locales", func(c *Config) { c.I18n.Locales = nil }, i18n.ErrConfiguration},
		{"duplicate locale", func(c *Config) { c.I18n.Locales = []string{"en", "en"} }, i18n.ErrConfiguration},
		{"unknown default", func(c *Config) { c.I18n.DefaultLocale = "fr" }, i18n.ErrConfiguration},
		{"domain for unknown locale", func(c *Config) { c.I18n.Domains = map[string]string{"fr": "https://example.fr"} }, ErrInvalidConfig},
		{"bad domain", func(c *Config) { c.I18n.Domains = map[string]string{"en": "example.com"} }, ErrInvalidConfig},
		{"bad pattern", func(c *Config) { c.Content.Pattern = "[" }, ErrInvalidConfig},
		{"duplicate collection", func(c *Config) {
			c.Content.Collections = []ConfigCollection{{Name: "a"}, {Name: " a "}}
		}, ErrInvalidConfig},
		{"nested collection name", func(c *Config) {
			c.Content.Collections = []ConfigCollection{{Name: "a/b"}}
		}, ErrInvalidConfig},
		{"negative workers", func(c *Config) { c.Build.Workers = -1 }, ErrInvalidConfig},
		{"bad internal origin", func(c *Config) { c.Checks.InternalOrigins = []string{"cdn.example.com"} }, ErrInvalidConfig},
		{"future version", func(c *Config) { c.Kotoba.Version = "99.0.0" }, ErrInvalidConfig},
		{"bad version", func(c *Config) { c.Kotoba.Version = "one" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.I18n.Locales = []string{"en", "toolongsubtag"}
	cfg.I18n.Labels = map[string]string{"en": "English", "fr": "Français"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	warnings := cfg.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("Warnings() = %v, want 2 entries", warnings)
	}
	if !strings.Contains(warnings[0], "toolongsubtag") || !strings.Contains(warnings[1], "fr") {
		t.Errorf("unexpected warnings %v", warnings)
	}
}
