package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"emptydir/internal/safety"
)

const appName = "emptydir"

type LoggingCfg struct {
	File         string `yaml:"file" json:"file"`                   // Log file; "-" disables file logging
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	ProtectedPaths  []string   `yaml:"protected_paths" json:"protected_paths"`   // Extra never-delete paths, matched exactly
	DatabasePath    string     `yaml:"database_path" json:"database_path"`       // SQLite prune history; "-" disables
	MetricsTextfile string     `yaml:"metrics_textfile" json:"metrics_textfile"` // node_exporter textfile; empty disables
	Logging         LoggingCfg `yaml:"logging" json:"logging"`
}

var (
	errInvalidPath      = errors.New("path must be absolute")
	errNegativeRotation = errors.New("logging.rotation_days cannot be negative")
)

// Disabled marks an optional file-backed feature as turned off
const Disabled = "-"

// Load reads the config at path. When path is empty the default location is
// tried and a missing default file yields the built-in defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Logging.RotationDays < 0 {
		return errNegativeRotation
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(StateDir(), "history.db")
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(StateDir(), appName+".log")
	}

	var err error
	if c.DatabasePath, err = cleanOptional(c.DatabasePath); err != nil {
		return fmt.Errorf("database_path: %w", err)
	}
	if c.Logging.File, err = cleanOptional(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.MetricsTextfile != "" {
		if c.MetricsTextfile, err = cleanAbsolute(c.MetricsTextfile); err != nil {
			return fmt.Errorf("metrics_textfile: %w", err)
		}
	}

	cleaned := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		cleaned = append(cleaned, cp)
	}
	c.ProtectedPaths = cleaned

	return nil
}

// HistoryEnabled reports whether prune history should be recorded
func (c *Config) HistoryEnabled() bool {
	return c.DatabasePath != Disabled
}

// FileLoggingEnabled reports whether log lines go to a file
func (c *Config) FileLoggingEnabled() bool {
	return c.Logging.File != Disabled
}

func cleanOptional(p string) (string, error) {
	if p == Disabled {
		return p, nil
	}
	return cleanAbsolute(p)
}

func cleanAbsolute(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(safety.ExpandHome(p))
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/emptydir/config.yaml
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = safety.ExpandHome(filepath.Join("~", ".config"))
	}
	return filepath.Join(base, appName, "config.yaml")
}

// StateDir returns $XDG_STATE_HOME/emptydir
func StateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		base = safety.ExpandHome(filepath.Join("~", ".local", "state"))
	}
	return filepath.Join(base, appName)
}
