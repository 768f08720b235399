// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	BackendURL           string
	BackendToken         string
	DatabasePath         string
	PreferencesPath      string
	LogLevel             string
	LogFile              string
	BackendTimeout       time.Duration
	UsageRefreshInterval time.Duration
	ProcessPollInterval  time.Duration
	HistoryRetention     time.Duration
	Notifications        bool
}

// Default values
const (
	defaultBackendURL           = "http://127.0.0.1:14562"
	defaultBackendTimeout       = 30 * time.Second
	defaultUsageRefreshInterval = 60 * time.Second
	defaultProcessPollInterval  = 4 * time.Second
	defaultHistoryRetention     = 30 * 24 * time.Hour
	defaultLogLevel             = "info"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getDataDir()

	cfg := &Config{
		BackendURL:           getEnvString("CXS_BACKEND_URL", defaultBackendURL),
		BackendToken:         os.Getenv("CXS_BACKEND_TOKEN"),
		BackendTimeout:       getEnvDuration("CXS_BACKEND_TIMEOUT", defaultBackendTimeout),
		UsageRefreshInterval: getEnvDuration("USAGE_REFRESH_INTERVAL", defaultUsageRefreshInterval),
		ProcessPollInterval:  getEnvDuration("PROCESS_POLL_INTERVAL", defaultProcessPollInterval),
		HistoryRetention:     getEnvDuration("HISTORY_RETENTION", defaultHistoryRetention),
		DatabasePath:         getEnvString("DATABASE_PATH", filepath.Join(dataDir, "usage.db")),
		PreferencesPath:      getEnvString("PREFERENCES_PATH", filepath.Join(dataDir, "preferences.yaml")),
		LogLevel:             getEnvString("LOG_LEVEL", defaultLogLevel),
		LogFile:              getEnvString("LOG_FILE", filepath.Join(dataDir, "cxs.log")),
		Notifications:        getEnvBool("CXS_NOTIFICATIONS", true),
	}

	for _, path := range []string{cfg.DatabasePath, cfg.PreferencesPath, cfg.LogFile} {
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "codex-switcher", ".env"),
			filepath.Join(home, ".codex", "switcher.env"),
		)
	}

	return paths
}

// getDataDir returns the directory holding the database, preferences and log.
func getDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "codex-switcher")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
