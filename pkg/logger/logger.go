package logger

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the severity level of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	NoticeLevel
	ErrorLevel
)

// ParseLevel converts a level name into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "notice":
		return NoticeLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level: %s", s)
}

// Component identifies the part of the worker a log line comes from
type Component int

const (
	None Component = iota
	Gate
	Probe
	Submit
	Confirm
	Scheduler
	Alert
	Store
	Chain
	Health
)

var componentPrefixes = map[Component]string{
	None:      "",
	Gate:      "[GATE]      ",
	Probe:     "[PROBE]     ",
	Submit:    "[SUBMIT]    ",
	Confirm:   "[CONFIRM]   ",
	Scheduler: "[SCHEDULER] ",
	Alert:     "[ALERT]     ",
	Store:     "[STORE]     ",
	Chain:     "[CHAIN]     ",
	Health:    "[HEALTH]    ",
}

var colors = map[Component]color.Attribute{
	None:      color.FgWhite,
	Gate:      color.FgHiGreen,
	Probe:     color.FgYellow,
	Submit:    color.FgMagenta,
	Confirm:   color.FgHiBlue,
	Scheduler: color.FgCyan,
	Alert:     color.FgRed,
	Store:     color.FgBlue,
	Chain:     color.FgGreen,
	Health:    color.FgHiWhite,
}

// Logger is a simple interface for logging messages.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})

	// Debug logs a debug message.
	Debug(format string, args ...interface{})

	// Notice logs a notice message.
	Notice(format string, args ...interface{})

	// Named returns a logger tagging every line with the given component.
	Named(component Component) Logger
}

// EmptyLogger is a simple implementation of the Logger interface that does nothing.
type EmptyLogger struct{}

var _ Logger = (*EmptyLogger)(nil)

func (l *EmptyLogger) Info(_ string, _ ...interface{})   {}
func (l *EmptyLogger) Error(_ string, _ ...interface{})  {}
func (l *EmptyLogger) Debug(_ string, _ ...interface{})  {}
func (l *EmptyLogger) Notice(_ string, _ ...interface{}) {}
func (l *EmptyLogger) Named(_ Component) Logger          { return l }

// StdLogger is a standard implementation of the Logger interface that logs messages to the console.
type StdLogger struct {
	enableColoring bool
	level          Level
	component      Component
	mu             *sync.Mutex
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
		component:      None,
		mu:             &sync.Mutex{},
	}
}

// Named returns a copy of the logger sharing the same output lock
func (l *StdLogger) Named(component Component) Logger {
	return &StdLogger{
		enableColoring: l.enableColoring,
		level:          l.level,
		component:      component,
		mu:             l.mu,
	}
}

// formatMessage formats the log message with the appropriate log level, component prefix, and coloring if enabled.
func (l *StdLogger) formatMessage(level Level, format string) string {
	prefix := componentPrefixes[l.component]
	if l.enableColoring && prefix != "" {
		prefix = color.New(colors[l.component]).Sprint(prefix)
	}

	var levelStr string
	switch level {
	case DebugLevel:
		levelStr = "[DEBUG]  "
	case InfoLevel:
		levelStr = "[INFO]   "
	case NoticeLevel:
		levelStr = "[NOTICE] "
	case ErrorLevel:
		levelStr = "[ERROR]  "
	}
	if l.enableColoring && level == ErrorLevel {
		levelStr = color.New(color.FgRed, color.Bold).Sprint(levelStr)
	}

	return levelStr + prefix + format
}

func (l *StdLogger) logf(level Level, format string, args ...interface{}) {
	if l.level > level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	log.Printf(l.formatMessage(level, format), args...)
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.logf(InfoLevel, format, args...)
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.logf(ErrorLevel, format, args...)
}

func (l *StdLogger) Debug(format string, args ...interface{}) {
	l.logf(DebugLevel, format, args...)
}

func (l *StdLogger) Notice(format string, args ...interface{}) {
	l.logf(NoticeLevel, format, args...)
}
