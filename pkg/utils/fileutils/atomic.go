package fileutils

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteAtomic renders gen into a temporary file next to path and renames it into place.
// An existing file with identical content is left untouched, so mtimes only move on real changes.
func WriteAtomic(path string, gen func(w io.Writer) error) (changed bool, err error) {
	var buf bytes.Buffer
	if err := gen(&buf); err != nil {
		return false, err
	}

	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, buf.Bytes()) {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return false, err
	}
	defer func(tmp *os.File) {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}(tmp)

	if err := tmp.Chmod(0o644); err != nil {
		return false, err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return false, err
	}
	if err := tmp.Sync(); err != nil {
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	if df, err := os.Open(dir); err == nil {
		_ = df.Sync()
		_ = df.Close()
	}

	return true, nil
}
