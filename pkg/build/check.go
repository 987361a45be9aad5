package build

import (
	"fmt"
	"strings"
	"time"

	"github.com/olimci/kotoba/pkg/checks"
	"github.com/olimci/kotoba/pkg/config"
	"github.com/olimci/kotoba/pkg/events"
)

const StepOutputChecks = "checks:output"

// CheckResult describes a check run over rendered output.
type CheckResult struct {
	Duration time.Duration
	Dir      string
	Scanned  int
	Linked   int

	External        int
	ExternalOrigins []string

	Report *checks.Report
	Events []events.Event
}

// Check scans the HTML files of the output directory for canonical and
// hreflang tags and runs the consistency checks over them.
func Check(opts ...Option) (*CheckResult, error) {
	o := defaultOptions().Apply(opts...)
	start := time.Now()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.configure(cfg)

	dir := layoutOf(cfg, o).Output

	collector := events.NewCollector(o.handler)
	sc := &StepContext{
		Ctx:     o.context,
		Options: o,
		StepID:  StepOutputChecks,
		handler: collector,
	}

	pages, err := checks.ScanDir(o.context, dir, cfg.Site.URL, o.maxWorkers)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	g := checks.FromHTML(pages, cfg.InternalOrigins())
	sc.Infof(dir, "scanned %d HTML files, %d with hreflang links", len(pages), len(g.Pages))

	res := &CheckResult{
		Dir:     dir,
		Scanned: len(pages),
		Linked:  len(g.Pages),
	}

	res.External, res.ExternalOrigins = g.ExternalOrigins()
	if res.External > 0 {
		sc.Warnf("checks", "%d hreflang link(s) point to external origins (%s); reciprocity cannot be verified",
			res.External, strings.Join(res.ExternalOrigins, ", "))
	}

	warnUnknownChecks(sc, cfg.Checks.Disable)

	runner := checks.NewRunner(o.checkOut,
		checks.WithEnabled(cfg.Checks.Enabled && !o.noChecks),
		checks.WithDisabled(cfg.Checks.Disable...),
	)

	report, err := runner.Run(g)
	res.Report = report
	res.Duration = time.Since(start)

	if err != nil {
		if !cfg.Checks.FailOnError {
			sc.Warn("checks", "hreflang checks failed", err)
		} else if err := sc.Error("checks", "hreflang checks failed", err); err != nil {
			res.Events = collector.Events()
			return res, err
		}
	}

	res.Events = collector.Events()
	return res, nil
}

func warnUnknownChecks(sc *StepContext, names []string) {
	for _, name := range names {
		if !checks.Known(name) {
			sc.Warnf("config", "checks.disable: unknown check %q", name)
		}
	}
}
