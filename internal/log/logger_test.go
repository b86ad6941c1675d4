// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureOutput points the logger at a buffer and restores the global
// state when the test ends.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	SetOutput(buf)
	level := GetLevel()
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(level)
	})
	return buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFatal, "FATAL"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(LevelWarn)
	Debugf("quiet %d", 1)
	Infof("quiet %d", 2)
	Warnf("loud %d", 3)
	Errorf("loud %d", 4)

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("suppressed levels leaked into output: %q", out)
	}
	// Four-letter level names carry an extra pad space so messages
	// align across levels.
	for _, want := range []string{"[WARN]  loud 3", "[ERROR] loud 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestDebugLevelPassesEverything(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(LevelDebug)
	Debugf("first")
	Infof("second")

	out := buf.String()
	for _, want := range []string{"[DEBUG] first", "[INFO]  second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestSetLevelRoundTrip(t *testing.T) {
	captureOutput(t)

	for _, level := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		SetLevel(level)
		if got := GetLevel(); got != level {
			t.Errorf("GetLevel() = %v after SetLevel(%v)", got, level)
		}
	}
}
