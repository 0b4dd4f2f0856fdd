package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"emptydir/internal/config"
)

const defaultRotationDays = 30

// New creates the run logger. Lines go to the configured log file (rotated by
// age) and, when verbose, to stderr. Stdout is reserved for deleted paths.
func New(cfg *config.Config, verbose bool) *log.Logger {
	var stderr io.Writer
	if verbose {
		stderr = os.Stderr
	}
	return newLogger(cfg, stderr)
}

func newLogger(cfg *config.Config, stderr io.Writer) *log.Logger {
	var writers []io.Writer
	if stderr != nil {
		writers = append(writers, stderr)
	}

	if cfg != nil && cfg.FileLoggingEnabled() {
		if f := openLogFile(cfg.Logging.File, cfg.Logging.RotationDays, stderr); f != nil {
			writers = append(writers, f)
		}
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}
	return log.New(out, "", log.LstdFlags|log.Lmicroseconds)
}

// openLogFile prepares the log directory, rotates, and opens for append.
// Failures are reported on stderr (if any) and disable file logging.
func openLogFile(filePath string, rotationDays int, stderr io.Writer) *os.File {
	warn := log.New(io.Discard, "", 0)
	if stderr != nil {
		warn.SetOutput(stderr)
	}

	logDir := filepath.Dir(filePath)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		warn.Printf("failed to ensure log directory %s: %v", logDir, err)
		return nil
	}

	if rotationDays <= 0 {
		rotationDays = defaultRotationDays
	}
	rotateLogsIfNeeded(filePath, rotationDays, warn)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		warn.Printf("failed to open log file %s: %v", filePath, err)
		return nil
	}
	return f
}

// rotateLogsIfNeeded rotates the log file once it is older than rotationDays
func rotateLogsIfNeeded(logPath string, rotationDays int, warn *log.Logger) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			warn.Printf("failed to rotate log file: %v", err)
			return
		}

		cleanupOldLogs(logPath, rotationDays, warn)
	}
}

// cleanupOldLogs removes rotated log files older than rotationDays
func cleanupOldLogs(logPath string, rotationDays int, warn *log.Logger) {
	logDir := filepath.Dir(logPath)
	baseName := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, baseName+".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			fullPath := filepath.Join(logDir, name)
			if err := os.Remove(fullPath); err != nil {
				warn.Printf("failed to remove old log file %s: %v", fullPath, err)
			}
		}
	}
}
