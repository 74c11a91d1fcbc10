package daemon

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8080)
	}
	if cfg.Registry.StaleTimeout != "8m" {
		t.Errorf("Registry.StaleTimeout = %q, want %q", cfg.Registry.StaleTimeout, "8m")
	}
	if cfg.Registry.SweepInterval != "3m" {
		t.Errorf("Registry.SweepInterval = %q, want %q", cfg.Registry.SweepInterval, "3m")
	}
	if cfg.Registry.DefaultRangeMeters != 5000 {
		t.Errorf("Registry.DefaultRangeMeters = %v, want 5000", cfg.Registry.DefaultRangeMeters)
	}
	if cfg.Registry.MaxRangeMeters != 50000 {
		t.Errorf("Registry.MaxRangeMeters = %v, want 50000", cfg.Registry.MaxRangeMeters)
	}
	if cfg.Registry.MaxResults != 100 {
		t.Errorf("Registry.MaxResults = %d, want 100", cfg.Registry.MaxResults)
	}
}

func TestLoadConfig_UsesDefaultsWithoutFile(t *testing.T) {
	t.Setenv("NEARLINK_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Registry.StaleTimeout != "8m" {
		t.Errorf("StaleTimeout = %q, want default", cfg.Registry.StaleTimeout)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("NEARLINK_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9999
	cfg.Registry.StaleTimeout = "4m"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", loaded.API.Port)
	}
	if loaded.Registry.StaleTimeout != "4m" {
		t.Errorf("StaleTimeout = %q, want %q", loaded.Registry.StaleTimeout, "4m")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"8m", 8 * time.Minute},
		{"90s", 90 * time.Second},
		{"", 3 * time.Minute},        // empty falls back
		{"garbage", 3 * time.Minute}, // unparsable falls back
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDuration(tt.input, 3*time.Minute)
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithConfig_AppliesRegistryOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Registry.MaxResults = 25
	cfg.Logging.Level = "debug"

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer d.Close()

	if d.Store == nil || d.Discovery == nil || d.Sweeper == nil || d.Server == nil {
		t.Error("daemon should wire all components")
	}
}
