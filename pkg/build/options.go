package build

import (
	"context"
	"io"
	"runtime"

	"github.com/olimci/kotoba/pkg/config"
	"github.com/olimci/kotoba/pkg/events"
)

func defaultOptions() *Options {
	return &Options{
		context:    context.Background(),
		configPath: config.DefaultPath,
		maxWorkers: runtime.NumCPU(),
		handler:    events.Discard,
		checkOut:   io.Discard,
	}
}

type Options struct {
	context    context.Context
	configPath string
	maxWorkers int
	workersSet bool
	handler    events.Handler
	output     string
	checkOut   io.Writer
	noChecks   bool
	Dev        bool
}

func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) Context() context.Context {
	return o.context
}

func (o *Options) ConfigPath() string {
	return o.configPath
}

// LenientErrors reports whether step errors are demoted to warnings.
func (o *Options) LenientErrors() bool {
	return o.Dev
}

// configure applies the settings of cfg that no option overrides.
func (o *Options) configure(cfg *config.Config) {
	if !o.workersSet && cfg.Build.Workers > 0 {
		o.maxWorkers = cfg.Build.Workers
	}
}

type Option func(*Options)

func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.context = ctx
	}
}

func WithConfig(path string) Option {
	return func(o *Options) {
		o.configPath = path
	}
}

func WithMaxWorkers(n int) Option {
	return func(o *Options) {
		o.maxWorkers = n
		o.workersSet = true
	}
}

// WithEventHandler receives every event reported by the build steps.
func WithEventHandler(h events.Handler) Option {
	return func(o *Options) {
		if h == nil {
			h = events.Discard
		}
		o.handler = h
	}
}

// WithOutput overrides the configured output directory.
func WithOutput(dir string) Option {
	return func(o *Options) {
		o.output = dir
	}
}

// WithCheckOutput sets where the checks summary is printed.
func WithCheckOutput(w io.Writer) Option {
	return func(o *Options) {
		o.checkOut = w
	}
}

func WithoutChecks() Option {
	return func(o *Options) {
		o.noChecks = true
	}
}

func WithDev() Option {
	return func(o *Options) {
		o.Dev = true
	}
}
