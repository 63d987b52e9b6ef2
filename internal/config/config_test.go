package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/olegrjumin/threatlens/internal/checker"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.PatternsFile != "" {
		t.Errorf("patterns file = %q, want built-in", cfg.PatternsFile)
	}
	if !reflect.DeepEqual(cfg.Settings, checker.DefaultSettings()) {
		t.Errorf("settings = %+v, want defaults", cfg.Settings)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PATTERNS_FILE", "/etc/threatlens/patterns.yaml")
	t.Setenv("PATTERNS_RELOAD_INTERVAL", "5000")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("BLOCK_TRACKERS", "false")
	t.Setenv("SHOW_WARNINGS", "0")
	t.Setenv("NOTIFICATION_LEVEL", "high")
	t.Setenv("SCAN_FREQUENCY", "onload")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.PatternsFile != "/etc/threatlens/patterns.yaml" {
		t.Errorf("patterns file = %q", cfg.PatternsFile)
	}
	if cfg.PatternsReloadInterval != 5*time.Second {
		t.Errorf("reload interval = %s", cfg.PatternsReloadInterval)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("session ttl = %s", cfg.SessionTTL)
	}
	if cfg.Settings.BlockTrackers || cfg.Settings.ShowWarnings {
		t.Errorf("boolean overrides not applied: %+v", cfg.Settings)
	}
	if cfg.Settings.NotificationLevel != checker.SeverityHigh || cfg.Settings.ScanFrequency != checker.ScanOnLoad {
		t.Errorf("enum overrides not applied: %+v", cfg.Settings)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	testCases := []struct {
		key   string
		value string
		check func(*Config) bool
	}{
		{"PORT", "eighty", func(c *Config) bool { return c.Port == 8080 }},
		{"BLOCK_PHISHING", "maybe", func(c *Config) bool { return c.Settings.BlockPhishing }},
		{"NOTIFICATION_LEVEL", "loud", func(c *Config) bool { return c.Settings.NotificationLevel == checker.SeverityMedium }},
		{"SCAN_FREQUENCY", "weekly", func(c *Config) bool { return c.Settings.ScanFrequency == checker.ScanRealtime }},
		{"SESSION_TTL", "soon", func(c *Config) bool { return c.SessionTTL == 30*time.Minute }},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if !tc.check(Load()) {
				t.Errorf("%s=%q should fall back to the default", tc.key, tc.value)
			}
		})
	}
}
