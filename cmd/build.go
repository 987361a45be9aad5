package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olimci/kotoba/cmd/internal"
	"github.com/urfave/cli/v3"
)

func newBuilder(cmd *cli.Command, distFlag string) *internal.Builder {
	logger := internal.NewLogger(os.Stderr, cmd.Bool("debug"))

	config := internal.BuilderConfig{
		ConfigPath:  cmd.String("config"),
		Handler:     internal.EventLogger{Logger: logger},
		CheckOutput: os.Stdout,
	}
	if distFlag != "" {
		config.DistDir = cmd.String(distFlag)
	}
	if cmd.IsSet("workers") {
		config.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("no-checks") {
		config.NoChecks = cmd.Bool("no-checks")
	}
	return internal.NewBuilder(config)
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	builder := newBuilder(cmd, "dist")

	result := builder.Build(ctx)
	if result.Error != nil {
		return fmt.Errorf("build failed: %w", result.Error)
	}

	res := result.Result
	fmt.Fprintf(cmd.Root().Writer, "OK  built %d pages in %s -> %s\n",
		len(res.Pages),
		result.Duration.Truncate(time.Millisecond),
		res.Output)

	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	builder := newBuilder(cmd, "dir")

	res, err := builder.Check(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "OK  checked %d of %d HTML files in %s\n",
		res.Linked, res.Scanned, res.Duration.Truncate(time.Millisecond))
	return nil
}
