package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/harrison/gwm/internal/copier"
)

func TestSummaryAllBuckets(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	l.Summary(copier.Outcome{
		Copied:             []string{".env", ".env.local"},
		SkippedVirtualEnvs: []string{"node_modules"},
		SkippedOversize:    []string{"dump.sql"},
	})

	got := buf.String()
	for _, want := range []string{
		"Copied 2 ignored file(s): .env, .env.local",
		"Skipped virtual environment(s): node_modules",
		"Skipped oversize file(s): dump.sql",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryEmptyOutcome(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	l.Summary(copier.Outcome{})

	if got := buf.String(); got != "No ignored files copied\n" {
		t.Errorf("empty summary = %q", got)
	}
}

func TestSummaryOmitsEmptyBuckets(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	l.Summary(copier.Outcome{Copied: []string{".env"}})

	got := buf.String()
	if !strings.Contains(got, "Copied 1 ignored file(s): .env") {
		t.Errorf("summary = %q", got)
	}
	if strings.Contains(got, "Skipped") {
		t.Errorf("no skip lines expected, got %q", got)
	}
}

func TestSummaryBufferHasNoColorCodes(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	l.Summary(copier.Outcome{Copied: []string{".env"}})

	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("non-terminal writers must not receive ANSI escapes")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "warn")

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("fail %d", 4)

	got := buf.String()
	if strings.Contains(got, "debug") || strings.Contains(got, "info 2") {
		t.Errorf("messages below warn must be filtered, got %q", got)
	}
	if !strings.Contains(got, "warning: warn 3") || !strings.Contains(got, "error: fail 4") {
		t.Errorf("warn and error must pass the filter, got %q", got)
	}
}

func TestNilWriterIsSilent(t *testing.T) {
	l := NewConsoleLogger(nil, "info")
	// Must not panic.
	l.Infof("hello")
	l.Summary(copier.Outcome{Copied: []string{".env"}})
}

func TestParseLevelDefaults(t *testing.T) {
	if parseLevel("") != levelInfo {
		t.Error("empty level must default to info")
	}
	if parseLevel("bogus") != levelInfo {
		t.Error("unknown level must default to info")
	}
	if parseLevel(" DEBUG ") != levelDebug {
		t.Error("levels are case-insensitive and trimmed")
	}
}
