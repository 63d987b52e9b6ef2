package config

import (
	"os"
	"strconv"
	"time"

	"github.com/olegrjumin/threatlens/internal/checker"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            int           // HTTP server port
	ShutdownTimeout time.Duration // Grace period for in-flight requests on shutdown
	EventBuffer     int           // Per-subscriber buffer of the event stream

	// Pattern configuration
	PatternsFile           string        // YAML pattern file, empty for built-in lists
	PatternsReloadInterval time.Duration // How often the pattern file is polled, 0 disables

	// Session configuration
	SessionTTL           time.Duration // Idle time after which a target is evicted
	SessionSweepInterval time.Duration // How often idle targets are swept

	// Default protection settings, overridable per request
	Settings checker.Settings
}

// Load reads configuration from environment variables
// and returns a Config struct with defaults applied
func Load() *Config {
	defaults := checker.DefaultSettings()

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		EventBuffer:     getEnvAsInt("EVENT_BUFFER", 64),

		PatternsFile:           getEnv("PATTERNS_FILE", ""),
		PatternsReloadInterval: getEnvAsDuration("PATTERNS_RELOAD_INTERVAL", 30*time.Second),

		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		Settings: checker.Settings{
			RealTimeProtection:  getEnvAsBool("REALTIME_PROTECTION", defaults.RealTimeProtection),
			BlockMaliciousSites: getEnvAsBool("BLOCK_MALICIOUS_SITES", defaults.BlockMaliciousSites),
			BlockPhishing:       getEnvAsBool("BLOCK_PHISHING", defaults.BlockPhishing),
			BlockTrackers:       getEnvAsBool("BLOCK_TRACKERS", defaults.BlockTrackers),
			BlockCryptominers:   getEnvAsBool("BLOCK_CRYPTOMINERS", defaults.BlockCryptominers),
			ShowWarnings:        getEnvAsBool("SHOW_WARNINGS", defaults.ShowWarnings),
			NotificationLevel:   getEnvAsSeverity("NOTIFICATION_LEVEL", defaults.NotificationLevel),
			ScanFrequency:       getEnvAsScanFrequency("SCAN_FREQUENCY", defaults.ScanFrequency),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean (1/0, true/false, ...)
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as milliseconds and converts to time.Duration
// Values with a unit ("30s", "5m") are accepted too.
// If the variable doesn't exist or can't be parsed, returns the default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Parse as milliseconds
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}

	return defaultValue
}

func getEnvAsSeverity(key string, defaultValue checker.Severity) checker.Severity {
	level := checker.Severity(getEnv(key, ""))
	if level.Rank() == 0 {
		return defaultValue
	}
	return level
}

func getEnvAsScanFrequency(key, defaultValue string) string {
	switch v := getEnv(key, ""); v {
	case checker.ScanRealtime, checker.ScanOnLoad:
		return v
	default:
		return defaultValue
	}
}
