package internal

import (
	"context"
	"io"
	"time"

	"github.com/olimci/kotoba/pkg/build"
	"github.com/olimci/kotoba/pkg/events"
)

type Builder struct {
	config BuilderConfig
}

type BuilderConfig struct {
	ConfigPath  string
	DistDir     string
	Workers     int
	NoChecks    bool
	Handler     events.Handler
	CheckOutput io.Writer
}

type BuildResult struct {
	Duration time.Duration
	Error    error
	Result   *build.Result
	Reason   string
	Paths    []string
	Number   int
}

func NewBuilder(config BuilderConfig) *Builder {
	return &Builder{config: config}
}

func (b *Builder) options(ctx context.Context) []build.Option {
	opts := []build.Option{
		build.WithContext(ctx),
		build.WithConfig(b.config.ConfigPath),
		build.WithEventHandler(b.config.Handler),
		build.WithCheckOutput(b.config.CheckOutput),
	}
	if b.config.DistDir != "" {
		opts = append(opts, build.WithOutput(b.config.DistDir))
	}
	if b.config.Workers > 0 {
		opts = append(opts, build.WithMaxWorkers(b.config.Workers))
	}
	if b.config.NoChecks {
		opts = append(opts, build.WithoutChecks())
	}
	return opts
}

// Layout resolves the paths the builder reads and writes.
func (b *Builder) Layout() (build.Layout, error) {
	return build.LoadLayout(b.options(context.Background())...)
}

func (b *Builder) Build(ctx context.Context) BuildResult {
	return b.run(b.options(ctx))
}

// BuildDev builds with errors demoted to warnings where the build can go on.
func (b *Builder) BuildDev(ctx context.Context) BuildResult {
	return b.run(append(b.options(ctx), build.WithDev()))
}

func (b *Builder) Check(ctx context.Context) (*build.CheckResult, error) {
	return build.Check(b.options(ctx)...)
}

func (b *Builder) run(opts []build.Option) BuildResult {
	start := time.Now()
	res, err := build.Build(opts...)

	return BuildResult{
		Duration: time.Since(start),
		Error:    err,
		Result:   res,
	}
}
