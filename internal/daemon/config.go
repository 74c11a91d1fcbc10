// Package daemon manages the nearlink server lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all server configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Registry  RegistryConfig  `toml:"registry"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RegistryConfig controls the liveness windows and query limits.
// Durations are strings in Go syntax ("8m", "90s").
type RegistryConfig struct {
	StaleTimeout         string  `toml:"stale_timeout"`
	SweepInterval        string  `toml:"sweep_interval"`
	DefaultRangeMeters   float64 `toml:"default_range_m"`
	MaxRangeMeters       float64 `toml:"max_range_m"`
	MaxResults           int     `toml:"max_results"`
	UsernameRadiusMeters float64 `toml:"username_radius_m"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Registry: RegistryConfig{
			StaleTimeout:         "8m",
			SweepInterval:        "3m",
			DefaultRangeMeters:   5000,
			MaxRangeMeters:       50000,
			MaxResults:           100,
			UsernameRadiusMeters: 1000,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads config from $NEARLINK_HOME/config.toml, falling back
// to defaults when no file exists.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(nearlinkHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $NEARLINK_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(nearlinkHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// nearlinkHome returns the nearlink data directory.
func nearlinkHome() string {
	if env := os.Getenv("NEARLINK_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nearlink")
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
