package manifest

import (
	"context"
	"runtime"
)

func defaultOptions() *options {
	return &options{
		outputDir:  "dist",
		ctx:        context.Background(),
		maxWorkers: runtime.NumCPU(),
	}
}

type options struct {
	outputDir       string
	ctx             context.Context
	maxWorkers      int
	ignoreConflicts bool
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}

	return o
}

type Option func(*options)

func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// IgnoreConflicts keeps the last artefact emitted for a contested target.
func IgnoreConflicts() Option {
	return func(o *options) {
		o.ignoreConflicts = true
	}
}
