package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Info("resolved endpoint", "pid", 4711)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "resolved endpoint" {
		t.Errorf("msg = %v, want %q", entry["msg"], "resolved endpoint")
	}
	if entry["pid"] != float64(4711) {
		t.Errorf("pid = %v, want 4711", entry["pid"])
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("low-severity entries leaked: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger == nil {
		t.Fatal("Nop returned nil")
	}
	// Must not panic and must accept any level.
	logger.Debug("x")
	logger.Error("x")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
