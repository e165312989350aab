// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected LogLevel
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{" error ", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = %v, %v, expected %v, %v", tt.in, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(GetLevel())

	SetLevel(LevelWarn)
	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN ] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected WARN and ERROR lines, got %q", out)
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(GetLevel())

	SetLevel(LevelDebug)
	l := New("renderer")
	l.Debugf("columns=%d", 800)

	if got := buf.String(); !strings.Contains(got, "[DEBUG] renderer: columns=800") {
		t.Errorf("unexpected component output %q", got)
	}
}
