package logging

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emptydir/internal/config"
)

// TestLoggerWritesFileAndStderr verifies both sinks receive lines
func TestLoggerWritesFileAndStderr(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "emptydir.log")
	cfg := &config.Config{Logging: config.LoggingCfg{File: logPath, RotationDays: 30}}

	var stderr bytes.Buffer
	logger := newLogger(cfg, &stderr)
	logger.Println("[INFO] prune started")

	if !strings.Contains(stderr.String(), "prune started") {
		t.Errorf("stderr = %q, expected log line", stderr.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "prune started") {
		t.Errorf("log file = %q, expected log line", data)
	}
}

// TestLoggerDisabledFile verifies "-" keeps the filesystem untouched
func TestLoggerDisabledFile(t *testing.T) {
	cfg := &config.Config{Logging: config.LoggingCfg{File: config.Disabled}}

	logger := newLogger(cfg, nil)
	if logger.Writer() != io.Discard {
		t.Errorf("logger writer = %T, expected io.Discard", logger.Writer())
	}
}

// TestRotation verifies stale logs are renamed and expired rotations removed
func TestRotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "emptydir.log")
	old := time.Now().AddDate(0, 0, -40)

	if err := os.WriteFile(logPath, []byte("old line\n"), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
	if err := os.Chtimes(logPath, old, old); err != nil {
		t.Fatalf("Failed to backdate log: %v", err)
	}

	expired := logPath + ".20200101-000000"
	if err := os.WriteFile(expired, []byte("ancient\n"), 0o644); err != nil {
		t.Fatalf("Failed to write rotated log: %v", err)
	}
	if err := os.Chtimes(expired, old, old); err != nil {
		t.Fatalf("Failed to backdate rotated log: %v", err)
	}

	unrelated := filepath.Join(dir, "other.log")
	if err := os.WriteFile(unrelated, []byte("keep\n"), 0o644); err != nil {
		t.Fatalf("Failed to write unrelated file: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("Failed to backdate unrelated file: %v", err)
	}

	rotateLogsIfNeeded(logPath, 30, log.New(io.Discard, "", 0))

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("stale log should have been rotated away, stat err = %v", err)
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Errorf("expired rotation should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated file must survive: %v", err)
	}

	rotated := logPath + "." + old.Format("20060102-150405")
	if _, err := os.Stat(rotated); err == nil {
		// The fresh rotation is itself older than the cutoff, so cleanup
		// removes it as well; only the unrelated file may remain.
		t.Errorf("rotated copy %s is older than the cutoff and should be removed", rotated)
	}
}

// TestRotationKeepsFreshLog verifies young logs are left alone
func TestRotationKeepsFreshLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "emptydir.log")
	if err := os.WriteFile(logPath, []byte("fresh\n"), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	rotateLogsIfNeeded(logPath, 30, log.New(io.Discard, "", 0))

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("fresh log should stay in place: %v", err)
	}
}
