package fileutils

import (
	"io/fs"
	"path"
	"strings"

	"github.com/olimci/kotoba/pkg/utils/set"
)

// WalkFilesFS walks a filesystem tree and returns a set of slash-separated file paths relative to root.
func WalkFilesFS(fsys fs.FS, root string) (*set.Set[string], error) {
	root = path.Clean(root)
	files := set.New[string]()

	err := fs.WalkDir(fsys, root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if current == root || d.IsDir() {
			return nil
		}

		rel := current
		if root != "." {
			rel = strings.TrimPrefix(current, root+"/")
		}
		files.Add(rel)
		return nil
	})

	return files, err
}

// WalkExtFS is WalkFilesFS restricted to files with the given extension (e.g. ".html").
func WalkExtFS(fsys fs.FS, root, ext string) ([]string, error) {
	files, err := WalkFilesFS(fsys, root)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, files.Len())
	for _, rel := range set.Sorted(files) {
		if strings.EqualFold(path.Ext(rel), ext) {
			out = append(out, rel)
		}
	}
	return out, nil
}
