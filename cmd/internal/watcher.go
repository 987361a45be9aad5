package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/olimci/kotoba/pkg/utils/set"
)

type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	paths    []string
	ignore   []string
}

type WatcherConfig struct {
	Paths    []string
	Debounce time.Duration
	// Ignore lists directories whose changes never trigger a rebuild,
	// typically the output directory.
	Ignore []string
}

type WatchEvent struct {
	Reason string
	Paths  []string
}

const reasonStarted = "watcher started"

func NewFileWatcher(config WatcherConfig) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ignore := make([]string, 0, len(config.Ignore))
	for _, p := range config.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}

	return &FileWatcher{
		watcher:  w,
		debounce: config.Debounce,
		paths:    config.Paths,
		ignore:   ignore,
	}, nil
}

func (fw *FileWatcher) Start(ctx context.Context) (<-chan WatchEvent, <-chan error, error) {
	eventCh := make(chan WatchEvent, 10)
	errorCh := make(chan error, 10)

	var watched []string
	for _, path := range fw.paths {
		path = filepath.Clean(path)
		if err := fw.addRecursive(path); err != nil {
			select {
			case errorCh <- fmt.Errorf("watch warn: %s: %w", path, err):
			default:
			}
			continue
		}
		watched = append(watched, path)
	}

	if len(watched) > 0 {
		eventCh <- WatchEvent{Reason: reasonStarted, Paths: watched}
	}

	go fw.watchLoop(ctx, eventCh, errorCh)

	return eventCh, errorCh, nil
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context, eventCh chan<- WatchEvent, errorCh chan<- error) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = set.New[string]()
	)

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(fw.debounce)
			timerC = timer.C
			return
		}
		timer.Reset(fw.debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod || fw.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.addRecursive(ev.Name)
				}
			}
			pending.Add(ev.Name)
			resetTimer()

		case <-timerC:
			timerC = nil
			if pending.Len() == 0 {
				continue
			}
			paths := set.Sorted(pending)
			pending = set.New[string]()

			select {
			case eventCh <- WatchEvent{Reason: fmt.Sprintf("file change (%s quiet)", fw.debounce), Paths: paths}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case errorCh <- fmt.Errorf("watch error: %w", err):
			default:
			}
		}
	}
}

// ignored reports whether path lies in an ignored directory or is an
// editor swap file.
func (fw *FileWatcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasPrefix(base, ".#") {
		return true
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(fw.ignore, func(dir string) bool {
		return abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator))
	})
}

func (fw *FileWatcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fw.watcher.Add(root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == ".git" || base == "node_modules" || fw.ignored(path) {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}
