package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/olimci/kotoba/pkg/events"
)

func TestEventLogger(t *testing.T) {
	var buf bytes.Buffer
	h := EventLogger{Logger: NewLogger(&buf, false)}

	h.Handle(events.Event{Level: events.Debug, Step: "content:load", Message: "loaded 3 entries"})
	h.Handle(events.Event{
		Level:   events.Warn,
		Step:    "content:resolve",
		Source:  "about.md",
		Message: "unrecognized alternate key",
		Error:   errors.New("boom"),
	})

	out := buf.String()
	if strings.Contains(out, "loaded 3 entries") {
		t.Error("debug event logged without --debug")
	}
	for _, want := range []string{"unrecognized alternate key", "step=content:resolve", "source=about.md", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	h = EventLogger{Logger: NewLogger(&buf, true)}
	h.Handle(events.Event{Level: events.Debug, Message: "loaded 3 entries"})
	if !strings.Contains(buf.String(), "loaded 3 entries") {
		t.Error("debug event not logged with --debug")
	}
}

func TestSummarize(t *testing.T) {
	evs := []events.Event{
		{Level: events.Info},
		{Level: events.Warn},
		{Level: events.Info},
		{Level: events.Info},
	}
	if got := Summarize(evs); got != "1 W, 3 I" {
		t.Errorf("Summarize() = %q", got)
	}
	if got := Summarize(nil); got != "" {
		t.Errorf("Summarize(nil) = %q", got)
	}
}
