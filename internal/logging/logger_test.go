package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttrsync/internal/config"
	"ttrsync/internal/logging"
)

func newFileLogger(t *testing.T, level, format string) (func(), string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "ttrsync.log")
	logger, err := logging.New(logging.Options{Level: level, Format: format, OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	emit := func() {
		ctx := logging.WithRunID(context.Background(), "run-1")
		l := logging.WithContext(ctx, logging.NewComponentLogger(logger, "download"))
		logging.Trace(ctx, l, "trace message")
		l.Debug("debug message")
		l.Info("info message", logging.String(logging.FieldReplayID, "abc"))
	}
	return emit, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsComponentAndAttrs(t *testing.T) {
	emit, path := newFileLogger(t, "info", "console")
	emit()
	content := readLog(t, path)

	if !strings.Contains(content, "INFO download: info message") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "run_id=run-1") || !strings.Contains(content, "replay_id=abc") {
		t.Fatalf("expected attrs in output, got %q", content)
	}
	if strings.Contains(content, "debug message") || strings.Contains(content, "trace message") {
		t.Fatalf("expected lower levels to be filtered, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestTraceLevelEmitsEverything(t *testing.T) {
	emit, path := newFileLogger(t, "trace", "console")
	emit()
	content := readLog(t, path)
	for _, want := range []string{"TRACE download: trace message", "DEBUG download: debug message", "info message"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in output, got %q", want, content)
		}
	}
}

func TestJSONLoggerUsesLowercaseLevels(t *testing.T) {
	emit, path := newFileLogger(t, "trace", "json")
	emit()
	lines := strings.Split(strings.TrimSpace(readLog(t, path)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if first["level"] != "trace" || first["component"] != "download" || first["run_id"] != "run-1" {
		t.Fatalf("unexpected json fields: %v", first)
	}
	if _, ok := first["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", first)
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestLevelForVerbosity(t *testing.T) {
	cases := map[int]string{0: "info", 1: "debug", 2: "trace", 5: "trace"}
	for count, want := range cases {
		if got := logging.LevelForVerbosity(count); got != want {
			t.Errorf("LevelForVerbosity(%d) = %q, want %q", count, got, want)
		}
	}
}

func TestNewFromConfigHonoursOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, "debug", &buf)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Fatal("expected debug to be enabled by override")
	}
	logger.Debug("planning downloads")
	if !strings.Contains(buf.String(), "planning downloads") {
		t.Fatalf("expected output in supplied writer, got %q", buf.String())
	}

	logger, err = logging.NewFromConfig(&cfg, "", &buf)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected info to be disabled at warn level")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger, "content service rate limited", "rate_limited",
		logging.String(logging.FieldImpact, "downloads slowed"))
	content := readLog(t, logPath)
	for _, want := range []string{"event_type=rate_limited", "error_hint=", `impact="downloads slowed"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}
