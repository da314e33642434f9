package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T, size int, level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	return NewWithCore(size, core), logs
}

func TestLogger_LogLevels(t *testing.T) {
	log, observed := newObserved(t, 10, zapcore.DebugLevel)

	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")
	log.Debug("debug message")

	entries := log.GetEntries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	expected := []string{"INFO", "WARN", "ERROR", "DEBUG"}
	for i, level := range expected {
		if entries[i].Level != level {
			t.Errorf("entry %d: expected %s level, got %s", i, level, entries[i].Level)
		}
	}

	all := observed.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 zap entries, got %d", len(all))
	}
	if all[1].Level != zapcore.WarnLevel || all[2].Level != zapcore.ErrorLevel {
		t.Errorf("unexpected zap levels: %v, %v", all[1].Level, all[2].Level)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, observed := newObserved(t, 10, zapcore.InfoLevel)

	log.Debug("hidden")
	log.Info("shown")

	if observed.Len() != 1 {
		t.Errorf("expected 1 zap entry, got %d", observed.Len())
	}
	entries := log.GetEntries()
	if len(entries) != 1 || entries[0].Message != "shown" {
		t.Errorf("debug entry should not be buffered: %v", entries)
	}
}

func TestLogger_RingBuffer(t *testing.T) {
	log, _ := newObserved(t, 3, zapcore.InfoLevel)

	log.Info("message 1")
	log.Info("message 2")
	log.Info("message 3")
	log.Info("message 4")

	entries := log.GetEntries()
	if len(entries) != 3 {
		t.Errorf("expected 3 entries (buffer size), got %d", len(entries))
	}

	// Oldest entry should be "message 2" (message 1 was overwritten)
	if !strings.Contains(entries[0].Message, "message 2") {
		t.Errorf("expected oldest entry to be 'message 2', got %s", entries[0].Message)
	}

	if !strings.Contains(entries[2].Message, "message 4") {
		t.Errorf("expected newest entry to be 'message 4', got %s", entries[2].Message)
	}
}

func TestLogger_Formatting(t *testing.T) {
	log, observed := newObserved(t, 10, zapcore.InfoLevel)

	log.Info("Match found: rand1=%d, rand2=%d, possible_r=%v", 10, 20, [3]int64{5, 6, 7})

	entries := log.GetEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	expected := "Match found: rand1=10, rand2=20, possible_r=[5 6 7]"
	if entries[0].Message != expected {
		t.Errorf("expected %q, got %q", expected, entries[0].Message)
	}
	if observed.FilterMessage(expected).Len() != 1 {
		t.Error("message not forwarded to zap")
	}
}

func TestLogger_Timestamp(t *testing.T) {
	log := Discard(10)

	log.Info("test")

	entries := log.GetEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	// Timestamp should be in format "2006-01-02 15:04:05.000"
	if len(entries[0].Timestamp) != 23 {
		t.Errorf("unexpected timestamp format: %s", entries[0].Timestamp)
	}
}

func TestLogger_EmptyBuffer(t *testing.T) {
	log := Discard(10)

	entries := log.GetEntries()
	if len(entries) != 0 {
		t.Errorf("expected 0 entries for empty buffer, got %d", len(entries))
	}
}

func TestNew_WritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	log, err := New(10, Config{Level: "info", Encoding: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("search started for %q", "H")
	log.Debug("not written")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"level":"INFO"`) {
		t.Errorf("expected capital level in %s", out)
	}
	if !strings.Contains(out, `search started for \"H\"`) {
		t.Errorf("expected message in %s", out)
	}
	if strings.Contains(out, "not written") {
		t.Errorf("debug line leaked at info level: %s", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(10, Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"info", zapcore.InfoLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelDebug, "DEBUG"},
		{Level(99), "INFO"}, // Unknown defaults to INFO
	}

	for _, tt := range tests {
		if tt.level.String() != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, tt.level.String(), tt.expected)
		}
	}
}
