package checks

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olimci/kotoba/pkg/utils/set"
)

var ErrChecksFailed = errors.New("build checks failed")

// Error is one problem found by a check.
type Error struct {
	Check   string
	Message string
	File    string
}

func (e Error) String() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Check, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Check, e.File, e.Message)
}

type Check struct {
	Name string
	Run  func(g *Graph) []Error
}

// Default returns the registered checks in the order they run.
func Default() []Check {
	return []Check{
		Bidirectional(),
		ConsistentExternals(),
	}
}

// Known reports whether name is a registered check.
func Known(name string) bool {
	for _, c := range Default() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// FailedError aggregates every error of a run.
type FailedError struct {
	Failed int
	Errors []Error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s with %d error(s)", ErrChecksFailed, len(e.Errors))
}

func (e *FailedError) Unwrap() error {
	return ErrChecksFailed
}

type Result struct {
	Name     string
	Errors   []Error
	Duration time.Duration
}

type Report struct {
	Results []Result
}

func (r *Report) Errors() []Error {
	var out []Error
	for _, res := range r.Results {
		out = append(out, res.Errors...)
	}
	return out
}

func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if len(res.Errors) > 0 {
			n++
		}
	}
	return n
}

type RunnerOption func(*Runner)

func WithChecks(checks ...Check) RunnerOption {
	return func(r *Runner) {
		r.checks = checks
	}
}

// WithDisabled skips the named checks.
func WithDisabled(names ...string) RunnerOption {
	return func(r *Runner) {
		for _, n := range names {
			r.disabled.Add(n)
		}
	}
}

// WithEnabled turns the whole runner on or off.
func WithEnabled(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.enabled = enabled
	}
}

// Runner runs checks in order and prints a summary to its writer.
type Runner struct {
	checks   []Check
	disabled *set.Set[string]
	enabled  bool
	out      io.Writer
	color    bool
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89dceb")).Bold(true) // cyan
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))            // green
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))            // red
	dimStyle   = lipgloss.NewStyle().Faint(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")) // grey
)

func NewRunner(out io.Writer, opts ...RunnerOption) *Runner {
	if out == nil {
		out = io.Discard
	}

	r := &Runner{
		checks:   Default(),
		disabled: set.New[string](),
		enabled:  true,
		out:      out,
	}
	for _, opt := range opts {
		opt(r)
	}

	if f, ok := out.(*os.File); ok {
		r.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return r
}

func (r *Runner) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

// Run executes every enabled check against g. All errors are collected
// before returning; a non-empty run yields a *FailedError.
func (r *Runner) Run(g *Graph) (*Report, error) {
	report := &Report{}
	if !r.enabled {
		return report, nil
	}

	fmt.Fprintf(r.out, "\n%s\n\n", r.paint(titleStyle, "Running build checks..."))

	total := 0
	for _, c := range r.checks {
		if r.disabled.Has(c.Name) {
			continue
		}

		start := time.Now()
		errs := c.Run(g)
		elapsed := time.Since(start)

		report.Results = append(report.Results, Result{Name: c.Name, Errors: errs, Duration: elapsed})
		total += len(errs)

		timing := r.paint(mutedStyle, fmt.Sprintf("(%dms)", elapsed.Milliseconds()))
		if len(errs) == 0 {
			fmt.Fprintf(r.out, "  %s %s %s\n", r.paint(passStyle, "✓"), c.Name, timing)
			continue
		}

		fmt.Fprintf(r.out, "  %s %s %s\n", r.paint(failStyle, "✗"), c.Name, timing)
		for _, e := range errs {
			msg := e.Message
			if e.File != "" {
				msg = e.File + ": " + msg
			}
			fmt.Fprintf(r.out, "    %s %s\n", r.paint(failStyle, "→"), r.paint(dimStyle, msg))
		}
	}

	fmt.Fprintln(r.out)
	if total == 0 {
		fmt.Fprintf(r.out, "%s %s\n\n",
			r.paint(passStyle.Bold(true), "All checks passed!"),
			r.paint(mutedStyle, fmt.Sprintf("(%d checks)", len(report.Results))))
		return report, nil
	}

	failed := report.Failed()
	fmt.Fprintf(r.out, "%s %s\n\n",
		r.paint(failStyle.Bold(true), fmt.Sprintf("%d check(s) failed", failed)),
		r.paint(mutedStyle, fmt.Sprintf("(%d errors)", total)))

	return report, &FailedError{Failed: failed, Errors: report.Errors()}
}

// Summary renders errs as an indented list.
func Summary(errs []Error) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "- " + e.String()
	}
	return strings.Join(lines, "\n")
}
