package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/olimci/kotoba/pkg/utils/fileutils"
	"golang.org/x/sync/errgroup"
)

const DefaultPattern = "**/*.{md,mdx}"

var (
	ErrDuplicateID  = errors.New("duplicate entry id")
	ErrMissingTitle = errors.New("missing title")
)

type LoadOptions struct {
	// Root is the content directory inside the file system.
	Root string
	// Pattern selects files relative to Root.
	Pattern string
	Workers int
}

// Load reads every matching file under opts.Root. Files are read in
// parallel; all failures are reported together. Entries are sorted by ID.
func Load(ctx context.Context, fsys fs.FS, opts LoadOptions) ([]*Entry, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files, err := fileutils.WalkFilesFS(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("walk content: %w", err)
	}

	rels := make([]string, 0, files.Len())
	for _, rel := range files.Values() {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return nil, fmt.Errorf("content pattern %q: %w", pattern, err)
		}
		if ok {
			rels = append(rels, rel)
		}
	}
	slices.Sort(rels)

	entries := make([]*Entry, len(rels))
	errs := make([]error, len(rels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range rels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i], errs[i] = loadEntry(fsys, root, rel)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if prev, ok := seen[e.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %q from %s and %s", ErrDuplicateID, e.ID, prev, e.Source))
			continue
		}
		seen[e.ID] = e.Source
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b *Entry) int {
		return strings.Compare(a.ID, b.ID)
	})

	return entries, nil
}

func loadEntry(fsys fs.FS, root, rel string) (*Entry, error) {
	b, err := fs.ReadFile(fsys, path.Join(root, rel))
	if err != nil {
		return nil, err
	}

	data, _, err := ParseFrontmatter(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	if strings.TrimSpace(data.Title) == "" {
		return nil, fmt.Errorf("%s: %w", rel, ErrMissingTitle)
	}

	return &Entry{
		ID:     strings.TrimSuffix(rel, path.Ext(rel)),
		Source: rel,
		Data:   data,
	}, nil
}
