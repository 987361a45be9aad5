package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/olimci/kotoba/pkg/events"
)

// NewLogger returns the CLI logger. Colors are dropped when w is not a
// terminal.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "kotoba",
		Level:  log.InfoLevel,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DBG").Foreground(lipgloss.Color("#6c7086"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Foreground(lipgloss.Color("#89b4fa"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Foreground(lipgloss.Color("#f9e2af"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERR").Foreground(lipgloss.Color("#f38ba8"))
	styles.Keys["step"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	logger.SetStyles(styles)

	return logger
}

// EventLogger forwards build events to a logger.
type EventLogger struct {
	Logger *log.Logger
}

func (l EventLogger) Handle(e events.Event) {
	kv := make([]any, 0, 6)
	if e.Step != "" {
		kv = append(kv, "step", e.Step)
	}
	if e.Source != "" {
		kv = append(kv, "source", e.Source)
	}
	if e.Error != nil {
		kv = append(kv, "err", e.Error)
	}

	switch e.Level {
	case events.Debug:
		l.Logger.Debug(e.Message, kv...)
	case events.Info:
		l.Logger.Info(e.Message, kv...)
	case events.Warn:
		l.Logger.Warn(e.Message, kv...)
	default:
		l.Logger.Error(e.Message, kv...)
	}
}

// Summarize counts events per level, most severe first: "1 W, 3 I".
func Summarize(evs []events.Event) string {
	counts := make(map[events.Level]int)
	for _, e := range evs {
		counts[e.Level]++
	}

	var parts []string
	for _, level := range []events.Level{events.Error, events.Warn, events.Info, events.Debug} {
		if n := counts[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, level))
		}
	}
	return strings.Join(parts, ", ")
}
