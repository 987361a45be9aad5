package build

import (
	"context"
	"fmt"

	"github.com/olimci/kotoba/pkg/events"
	"github.com/olimci/kotoba/pkg/manifest"
)

type StepContext struct {
	Ctx      context.Context
	Manifest *manifest.Manifest
	Options  *Options
	StepID   string

	handler events.Handler
}

func (sc *StepContext) report(level events.Level, source, message string, err error) {
	sc.handler.Handle(events.Event{
		Level:   level,
		Step:    sc.StepID,
		Source:  source,
		Message: message,
		Error:   err,
	})
}

func (sc *StepContext) Debug(source, message string) {
	sc.report(events.Debug, source, message, nil)
}

func (sc *StepContext) Debugf(source, format string, args ...any) {
	sc.Debug(source, fmt.Sprintf(format, args...))
}

func (sc *StepContext) Info(source, message string) {
	sc.report(events.Info, source, message, nil)
}

func (sc *StepContext) Infof(source, format string, args ...any) {
	sc.Info(source, fmt.Sprintf(format, args...))
}

// Warn reports a problem the build continues past.
func (sc *StepContext) Warn(source, message string, err error) {
	sc.report(events.Warn, source, message, err)
}

func (sc *StepContext) Warnf(source, format string, args ...any) {
	sc.Warn(source, fmt.Sprintf(format, args...), nil)
}

// Error reports an error. In lenient mode it is demoted to a warning and
// nil is returned; otherwise the returned error should end the step.
func (sc *StepContext) Error(source, message string, err error) error {
	if sc.Options.LenientErrors() {
		sc.report(events.Warn, source, message, err)
		return nil
	}

	sc.report(events.Error, source, message, err)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", source, message, err)
	}
	return fmt.Errorf("%s: %s", source, message)
}

func (sc *StepContext) Errorf(source, format string, args ...any) error {
	return sc.Error(source, fmt.Sprintf(format, args...), nil)
}

type Step struct {
	ID   string
	Deps []string
	Func func(*StepContext) error
}

func StepFunc(id string, fn func(*StepContext) error, deps ...string) Step {
	if deps == nil {
		deps = []string{}
	}

	return Step{
		ID:   id,
		Deps: deps,
		Func: fn,
	}
}
