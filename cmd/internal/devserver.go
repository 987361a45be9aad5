package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type DevServer struct {
	builder *Builder
	server  *Server
	watcher *FileWatcher
	logger  *log.Logger
}

type DevServerConfig struct {
	Builder    *Builder
	Logger     *log.Logger
	DistDir    string
	Port       int
	Debounce   time.Duration
	WatchPaths []string
}

type BuildRequest struct {
	Reason string
	Paths  []string
}

func NewDevServer(config DevServerConfig) (*DevServer, error) {
	server := NewServer(ServerConfig{
		DistDir: config.DistDir,
		Port:    config.Port,
	})

	watcher, err := NewFileWatcher(WatcherConfig{
		Paths:    config.WatchPaths,
		Debounce: config.Debounce,
		Ignore:   []string{config.DistDir},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &DevServer{
		builder: config.Builder,
		server:  server,
		watcher: watcher,
		logger:  config.Logger,
	}, nil
}

func (ds *DevServer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL, err := ds.server.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	watchEvents, watchErrors, err := ds.watcher.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	buildRequests := make(chan BuildRequest, 10)
	buildResults := make(chan BuildResult, 10)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ds.buildWorker(ctx, buildRequests, buildResults)
	}()

	buildRequests <- BuildRequest{Reason: "initial"}

	ds.logger.Info("dev server started", "url", baseURL)
	ds.logger.Info("sitemap", "url", baseURL+"sitemap.xml")

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()

		case event := <-watchEvents:
			if event.Reason == reasonStarted {
				ds.logger.Info("watching", "paths", strings.Join(event.Paths, ", "))
				continue
			}
			select {
			case buildRequests <- BuildRequest{Reason: event.Reason, Paths: event.Paths}:
			default:
				ds.logger.Warn("rebuild skipped: request queue full")
			}

		case err := <-watchErrors:
			ds.logger.Warn("watch error", "err", err)

		case result := <-buildResults:
			ds.logBuildResult(result)
		}
	}
}

func (ds *DevServer) buildWorker(ctx context.Context, requests <-chan BuildRequest, results chan<- BuildResult) {
	buildCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			buildCount++

			result := ds.builder.BuildDev(ctx)
			result.Reason = req.Reason
			result.Paths = req.Paths
			result.Number = buildCount

			if result.Error == nil {
				ds.server.SetResult(result.Result)
			}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (ds *DevServer) logBuildResult(result BuildResult) {
	elapsed := result.Duration.Truncate(time.Millisecond)

	if result.Error != nil {
		if errors.Is(result.Error, context.Canceled) {
			return
		}
		ds.logger.Error(fmt.Sprintf("build #%d failed", result.Number), "took", elapsed, "reason", result.Reason, "err", result.Error)
		if len(result.Paths) > 0 {
			ds.logger.Error("changes", "paths", strings.Join(result.Paths, ", "))
		}
		return
	}

	kv := []any{"took", elapsed, "reason", result.Reason, "pages", len(result.Result.Pages)}
	if summary := Summarize(result.Result.Events); summary != "" {
		kv = append(kv, "events", summary)
	}
	ds.logger.Info(fmt.Sprintf("build #%d ok", result.Number), kv...)
	if len(result.Paths) > 0 {
		ds.logger.Debug("changes", "paths", strings.Join(result.Paths, ", "))
	}
}

func (ds *DevServer) Close() error {
	var errs []error

	if err := ds.watcher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("watcher close: %w", err))
	}

	if err := ds.server.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	return errors.Join(errs...)
}
