// Package config loads the phasedelay command configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete command configuration.
type Config struct {
	Input   InputConfig  `yaml:"input"`
	Output  OutputConfig `yaml:"output"`
	Log     LogConfig    `yaml:"log"`
	Workers int          `yaml:"workers"` // channels processed concurrently per stage
}

// InputConfig locates the BOXY recording.
type InputConfig struct {
	Path      string `yaml:"path"`       // file, or directory holding the recording
	DataType  string `yaml:"datatype"`   // AC, DC or Ph
	MultiFile bool   `yaml:"multi_file"` // read *.NNN montage/block files
}

// OutputConfig selects where stage snapshots go. Both may be empty.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // CSV snapshot directory
	Database string `yaml:"database"` // SQLite snapshot store
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input:   InputConfig{DataType: "Ph"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Workers: 1,
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field values. It does not require Input.Path, which the
// command line may still supply.
func Validate(cfg *Config) error {
	var errs []error

	switch cfg.Input.DataType {
	case "AC", "DC", "Ph":
	default:
		errs = append(errs, fmt.Errorf("input.datatype must be AC, DC or Ph, got %q", cfg.Input.DataType))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers))
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel maps Level to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
