package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olimci/kotoba/cmd/internal"
	"github.com/urfave/cli/v3"
)

// runServe builds once and serves the result until interrupted.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger := internal.NewLogger(os.Stderr, cmd.Bool("debug"))
	builder := newBuilder(cmd, "dist")

	result := builder.Build(ctx)
	if result.Error != nil {
		return fmt.Errorf("build failed: %w", result.Error)
	}

	server := internal.NewServer(internal.ServerConfig{
		DistDir: result.Result.Output,
		Port:    int(cmd.Int("port")),
	})
	server.SetResult(result.Result)

	baseURL, err := server.Start(ctx)
	if err != nil {
		return err
	}
	logger.Info("serving", "url", baseURL, "dir", result.Result.Output)

	<-ctx.Done()
	return nil
}

// runDev starts the development server with file watching and auto-rebuild.
func runDev(ctx context.Context, cmd *cli.Command) error {
	logger := internal.NewLogger(os.Stderr, cmd.Bool("debug"))
	builder := newBuilder(cmd, "dist")

	layout, err := builder.Layout()
	if err != nil {
		return err
	}

	devServer, err := internal.NewDevServer(internal.DevServerConfig{
		Builder:    builder,
		Logger:     logger,
		DistDir:    layout.Output,
		Port:       int(cmd.Int("port")),
		Debounce:   cmd.Duration("debounce"),
		WatchPaths: layout.Watched(),
	})
	if err != nil {
		return err
	}
	defer devServer.Close()

	if err := devServer.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
