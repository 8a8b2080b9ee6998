// Package logging provides the core's own diagnostic logging — not to be
// confused with the Error facts the core emits as data (internal/coreerrors).
// This is for integrity-check failures, cache invalidation traces, and other
// operational noise a maintainer watches, the way the teacher's CLI prints
// terminal-aware status text (internal/evaluator/builtins_term.go) rather
// than pulling in a logging framework.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// Logger is a small leveled logger. Build one with New or Default; the
// zero value has no writer and is not usable, while a nil *Logger
// discards every message.
type Logger struct {
	out      io.Writer
	level    Level
	colorize bool
}

// New builds a Logger writing to out at the given level. Color is enabled
// only when out is a terminal, matching the teacher's isatty-gated styling.
func New(out *os.File, level Level) *Logger {
	colorize := out != nil && isatty.IsTerminal(out.Fd())
	var w io.Writer = out
	if out == nil {
		w = os.Stderr
	}
	return &Logger{out: w, level: level, colorize: colorize}
}

func Default() *Logger {
	return New(os.Stderr, LevelWarn)
}

func (l *Logger) log(level Level, prefix func() string, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	tag := prefix()
	fmt.Fprintf(l.out, "%s %s %s\n", ts, tag, msg)
}

func (l *Logger) tag(level Level) func() string {
	return func() string {
		text, c := levelText(level)
		if l.colorize {
			return c.Sprint(text)
		}
		return text
	}
}

func levelText(level Level) (string, *color.Color) {
	switch level {
	case LevelDebug:
		return "[debug]", color.New(color.FgCyan)
	case LevelInfo:
		return "[info]", color.New(color.FgGreen)
	case LevelWarn:
		return "[warn]", color.New(color.FgYellow)
	default:
		return "[error]", color.New(color.FgRed, color.Bold)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, l.tag(LevelDebug), format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, l.tag(LevelInfo), format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, l.tag(LevelWarn), format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, l.tag(LevelError), format, args...) }
