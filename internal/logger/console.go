// Package logger provides the console output for gwm: a small leveled
// logger plus the human-readable summary of a materialization outcome.
// Color is used only when writing to a real terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/gwm/internal/copier"
)

// Log level ordering for filtering.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes leveled messages and outcome summaries to a writer.
// It is safe for concurrent use.
type ConsoleLogger struct {
	writer      io.Writer
	level       int
	mu          sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger writing to w. If w is nil,
// output is discarded. level is one of debug, info, warn, error
// (case-insensitive); empty or unknown defaults to info.
func NewConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      w,
		level:       parseLevel(level),
		colorOutput: isTerminal(w),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether w is a TTY that supports color. NO_COLOR is
// honored through the color library.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debugf logs a debug-level message.
func (l *ConsoleLogger) Debugf(format string, args ...any) {
	l.logf(levelDebug, "", format, args...)
}

// Infof logs an info-level message.
func (l *ConsoleLogger) Infof(format string, args ...any) {
	l.logf(levelInfo, "", format, args...)
}

// Warnf logs a warn-level message.
func (l *ConsoleLogger) Warnf(format string, args ...any) {
	l.logf(levelWarn, "warning: ", format, args...)
}

// Errorf logs an error-level message.
func (l *ConsoleLogger) Errorf(format string, args ...any) {
	l.logf(levelError, "error: ", format, args...)
}

func (l *ConsoleLogger) logf(level int, prefix, format string, args ...any) {
	if l.writer == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer, prefix+format+"\n", args...)
}

// Summary renders a materialization outcome as the familiar one-line-per-
// bucket report. An empty outcome reports that nothing was copied.
func (l *ConsoleLogger) Summary(out copier.Outcome) {
	if l.writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if out.IsEmpty() {
		fmt.Fprintln(l.writer, "No ignored files copied")
		return
	}

	green := l.sprintf(color.FgGreen)
	yellow := l.sprintf(color.FgYellow)

	if len(out.Copied) > 0 {
		fmt.Fprintln(l.writer, green("Copied %d ignored file(s): %s",
			len(out.Copied), strings.Join(out.Copied, ", ")))
	}
	if len(out.SkippedVirtualEnvs) > 0 {
		fmt.Fprintln(l.writer, yellow("Skipped virtual environment(s): %s",
			strings.Join(out.SkippedVirtualEnvs, ", ")))
	}
	if len(out.SkippedOversize) > 0 {
		fmt.Fprintln(l.writer, yellow("Skipped oversize file(s): %s",
			strings.Join(out.SkippedOversize, ", ")))
	}
}

// sprintf returns a formatter that applies the color attribute only when
// color output is enabled.
func (l *ConsoleLogger) sprintf(attr color.Attribute) func(format string, args ...any) string {
	if !l.colorOutput {
		return fmt.Sprintf
	}
	return color.New(attr).Sprintf
}
