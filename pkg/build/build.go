package build

import (
	"fmt"
	"time"

	"github.com/olimci/kotoba/pkg/checks"
	"github.com/olimci/kotoba/pkg/config"
	"github.com/olimci/kotoba/pkg/events"
	"github.com/olimci/kotoba/pkg/manifest"
	"github.com/olimci/kotoba/pkg/sitemap"
	"github.com/olimci/kotoba/pkg/utils/set"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDuplicateStep        = fmt.Errorf("duplicate step")
	ErrSelfDependency       = fmt.Errorf("self dependency")
	ErrUnresolvedDependency = fmt.Errorf("unresolved dependency")
	ErrCircularDependency   = fmt.Errorf("circular dependency")
	ErrTaskError            = fmt.Errorf("task error")
	ErrBuildFailed          = fmt.Errorf("build failed")
)

// Result describes a finished build.
type Result struct {
	Duration    time.Duration
	SiteURL     string
	SitemapPath string
	Output      string

	Pages   []Page
	Sitemap []sitemap.Entry
	Report  *checks.Report
	Outputs []manifest.Output
	Events  []events.Event
}

// Build loads the configuration, resolves every page and writes the
// sitemap, robots.txt and alternates artefacts.
func Build(opts ...Option) (*Result, error) {
	o := defaultOptions().Apply(opts...)
	start := time.Now()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.configure(cfg)

	layout := layoutOf(cfg, o)

	man := manifest.New()
	manifest.SetAs(man, ConfigK, cfg)
	manifest.SetAs(man, OptionsK, o)
	manifest.SetAs(man, SourceK, layout.Source)

	collector := events.NewCollector(o.handler)

	outputs, err := buildSteps(Steps(), man, layout.Output, o, collector)
	if err != nil {
		return nil, err
	}

	return &Result{
		Duration:    time.Since(start),
		SiteURL:     manifest.GetAs(man, ResolverK).SiteURL(),
		SitemapPath: cfg.Build.Sitemap.Output,
		Output:      layout.Output,
		Pages:       manifest.GetAs(man, PagesK),
		Sitemap:     manifest.GetAs(man, SitemapK),
		Report:      manifest.GetAs(man, ReportK),
		Outputs:     outputs,
		Events:      collector.Events(),
	}, nil
}

// buildSteps runs a DAG of steps and writes the artefacts they emit.
func buildSteps(steps []Step, man *manifest.Manifest, output string, options *Options, collector *events.Collector) ([]manifest.Output, error) {
	dag, err := newDAG(steps)
	if err != nil {
		return nil, err
	}

	var ready []string
	for id, d := range dag.deg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	if len(ready) == 0 {
		return nil, ErrCircularDependency
	}

	g, ctx := errgroup.WithContext(options.context)
	if options.maxWorkers > 0 {
		g.SetLimit(options.maxWorkers)
	}

	// Steps only report completion; dispatch happens on this goroutine so
	// a finished step never waits on a worker slot.
	finished := make(chan string, len(steps))

	run := func(id string) {
		step := dag.m[id]
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sc := StepContext{
				Ctx:      ctx,
				Manifest: man,
				Options:  options,
				StepID:   step.ID,
				handler:  collector,
			}

			if err := step.Func(&sc); err != nil {
				return fmt.Errorf("%w (%s): %w", ErrTaskError, step.ID, err)
			}

			finished <- step.ID
			return nil
		})
	}

	var (
		running int
		done    int
	)

loop:
	for {
		for len(ready) > 0 {
			run(ready[0])
			ready = ready[1:]
			running++
		}
		if running == 0 {
			break
		}

		select {
		case id := <-finished:
			running--
			done++
			for _, req := range dag.adj[id] {
				dag.deg[req]--
				if dag.deg[req] == 0 {
					ready = append(ready, req)
				}
			}
		case <-ctx.Done():
			break loop
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	if err := options.context.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if done != len(steps) {
		var stuck []string
		for id, d := range dag.deg {
			if d != 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrCircularDependency, stuck)
	}

	if !options.LenientErrors() && collector.Count(events.Error) > 0 {
		return nil, fmt.Errorf("%w: %d error(s) reported during build", ErrBuildFailed, collector.Count(events.Error))
	}

	manifestOpts := []manifest.Option{
		manifest.WithOutputDir(output),
		manifest.WithContext(options.context),
		manifest.WithMaxWorkers(options.maxWorkers),
	}

	if options.Dev {
		manifestOpts = append(manifestOpts, manifest.IgnoreConflicts())
	}

	outputs, err := man.Build(manifestOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	return outputs, nil
}

// newDAG constructs a DAG from a slice of steps.
func newDAG(steps []Step) (*dag, error) {
	d := &dag{
		m:   make(map[string]Step),
		adj: make(map[string][]string),
		deg: make(map[string]int),
	}

	for _, step := range steps {
		if _, ex := d.m[step.ID]; ex {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.ID)
		}
		d.m[step.ID] = step
		d.deg[step.ID] = 0
	}

	for _, step := range steps {
		seen := set.New[string]()
		for _, dep := range step.Deps {
			if step.ID == dep {
				return nil, fmt.Errorf("%w: %s", ErrSelfDependency, step.ID)
			}
			if _, ex := d.m[dep]; !ex {
				return nil, fmt.Errorf("%w: %s", ErrUnresolvedDependency, dep)
			}
			if seen.HasAdd(dep) {
				continue
			}

			d.deg[step.ID]++
			d.adj[dep] = append(d.adj[dep], step.ID)
		}
	}

	return d, nil
}

// dag is an internal struct representing a directed acyclic graph
type dag struct {
	m   map[string]Step
	adj map[string][]string
	deg map[string]int
}
