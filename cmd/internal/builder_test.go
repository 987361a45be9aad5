package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuilder(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "kotoba.toml")
	writeFile(t, config, "[site]\nurl = \"https://example.com\"\n\n[i18n]\nlocales = [\"en\", \"ru\"]\n")
	writeFile(t, filepath.Join(dir, "content", "index.md"), "---\ntitle: Home\n---\n")
	writeFile(t, filepath.Join(dir, "content", "ru", "index.md"), "---\ntitle: Главная\n---\n")

	dist := filepath.Join(dir, "public")
	b := NewBuilder(BuilderConfig{ConfigPath: config, DistDir: dist, Workers: 2})

	layout, err := b.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if layout.Output != dist || layout.Source != filepath.Join(dir, "content") {
		t.Errorf("layout = %+v", layout)
	}

	res := b.BuildDev(context.Background())
	if res.Error != nil {
		t.Fatalf("BuildDev: %v", res.Error)
	}
	if len(res.Result.Pages) != 2 || len(res.Result.Sitemap) != 2 {
		t.Errorf("got %d pages and %d sitemap entries", len(res.Result.Pages), len(res.Result.Sitemap))
	}
	if _, err := os.Stat(filepath.Join(dist, "sitemap.xml")); err != nil {
		t.Errorf("sitemap.xml: %v", err)
	}

	b = NewBuilder(BuilderConfig{ConfigPath: filepath.Join(dir, "missing.toml")})
	if res := b.Build(context.Background()); res.Error == nil {
		t.Error("Build succeeded without a config file")
	}
}
