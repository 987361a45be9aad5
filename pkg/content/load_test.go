package content

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
)

func page(title string, extra string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("---\ntitle: " + title + "\n" + extra + "---\nbody\n")}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"content/index.md":               page("Home", ""),
		"content/about.mdx":              page("About", "alternates:\n  ru: o-nas\n"),
		"content/ru/o-nas.md":            page("О нас", ""),
		"content/ru/draft.md":            page("Draft", "draft: true\n"),
		"content/_collections/blog/a.md": page("A", ""),
		"content/notes.txt":              {Data: []byte("ignored")},
		"other/index.md":                 page("Outside", ""),
	}

	entries, err := Load(context.Background(), fsys, LoadOptions{Root: "content", Workers: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"_collections/blog/a", "about", "index", "ru/draft", "ru/o-nas"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("entries[%d].ID = %q, want %q", i, entries[i].ID, id)
		}
	}

	if entries[1].Source != "about.mdx" {
		t.Errorf("Source = %q, want about.mdx", entries[1].Source)
	}
	if entries[1].Data.Alternates["ru"] != "o-nas" {
		t.Errorf("alternates not decoded: %v", entries[1].Data.Alternates)
	}

	if got := len(Published(entries)); got != 4 {
		t.Errorf("Published = %d entries, want 4", got)
	}
}

func TestLoadPattern(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/a.md":  page("A", ""),
		"blog/b.md":  page("B", ""),
		"blog/c.mdx": page("C", ""),
	}

	entries, err := Load(context.Background(), fsys, LoadOptions{Pattern: "blog/*.md"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "blog/b" {
		t.Errorf("got %v, want only blog/b", entries)
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md":    {Data: []byte("no frontmatter")},
		"b.md":    {Data: []byte("---\ndescription: untitled\n---\n")},
		"c.md":    page("C", ""),
		"dup.md":  page("Dup", ""),
		"dup.mdx": page("Dup", ""),
	}

	_, err := Load(context.Background(), fsys, LoadOptions{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("error %v does not report the missing frontmatter", err)
	}
	if !errors.Is(err, ErrMissingTitle) {
		t.Errorf("error %v does not report the missing title", err)
	}

	delete(fsys, "a.md")
	delete(fsys, "b.md")
	if _, err := Load(context.Background(), fsys, LoadOptions{}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("error = %v, want ErrDuplicateID", err)
	}
}
