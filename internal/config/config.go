package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chronolog/chronolog/internal/correct"
)

// Config holds the settings for a chronolog store.
type Config struct {
	// DBPath is the SQLite database file. Defaults to
	// $XDG_DATA_HOME/chronolog/chronolog.db.
	DBPath string `yaml:"db_path"`

	// MaxRunning is the auto-cutoff threshold for forever-running
	// intervals. Zero disables auto-cutoff.
	MaxRunning Duration `yaml:"max_running"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose"`
}

// Duration wraps time.Duration with YAML support for strings like
// "8h" or "90m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DBPath:     filepath.Join(dir, "chronolog.db"),
		MaxRunning: Duration(correct.DefaultMaxRunning),
	}, nil
}

// Load reads a YAML config file, filling unset fields from defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("config %s: db_path must not be empty", path)
	}
	return cfg, nil
}

// dataDir returns the XDG data directory for chronolog, creating it
// if needed.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(base, "chronolog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
