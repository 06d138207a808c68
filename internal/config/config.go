// Package config provides configuration management for the Clipsight agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort         = 8797
	DefaultLogLevel     = "info"
	DefaultDataDir      = ".clipsight"
	DefaultAPIBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultModel        = "gemini-2.5-flash"
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 12

	// Environment variable names
	EnvPort         = "CLIPSIGHT_PORT"
	EnvLogLevel     = "CLIPSIGHT_LOG_LEVEL"
	EnvDataDir      = "CLIPSIGHT_DATA_DIR"
	EnvAPIKey       = "CLIPSIGHT_API_KEY"
	EnvAPIBaseURL   = "CLIPSIGHT_API_BASE_URL"
	EnvModel        = "CLIPSIGHT_MODEL"
	EnvPollInterval = "CLIPSIGHT_POLL_INTERVAL_S"
	EnvPollAttempts = "CLIPSIGHT_POLL_ATTEMPTS"
	EnvHeadless     = "CLIPSIGHT_HEADLESS"

	// Database filename
	DBFilename = "clipsight.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	PreviewDir() string
	APIKey() string
	APIBaseURL() string
	Model() string
	PollInterval() time.Duration
	PollAttempts() int
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	dataDir      string
	apiKey       string
	apiBaseURL   string
	model        string
	pollInterval time.Duration
	pollAttempts int
	headless     bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:         DefaultPort,
		logLevel:     DefaultLogLevel,
		dataDir:      defaultDataDir(),
		apiBaseURL:   DefaultAPIBaseURL,
		model:        DefaultModel,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.apiKey = os.Getenv(EnvAPIKey)

	if u := os.Getenv(EnvAPIBaseURL); u != "" {
		cfg.apiBaseURL = u
	}

	if m := os.Getenv(EnvModel); m != "" {
		cfg.model = m
	}

	if s := os.Getenv(EnvPollInterval); s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive number of seconds", EnvPollInterval)
		}
		cfg.pollInterval = time.Duration(secs) * time.Second
	}

	if a := os.Getenv(EnvPollAttempts); a != "" {
		attempts, err := strconv.Atoi(a)
		if err != nil || attempts < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPollAttempts)
		}
		cfg.pollAttempts = attempts
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// PreviewDir returns the directory holding per-session preview copies
func (c *EnvConfig) PreviewDir() string {
	return filepath.Join(c.dataDir, "previews")
}

// APIKey returns the generative API key; empty means run with the stub client
func (c *EnvConfig) APIKey() string {
	return c.apiKey
}

// APIBaseURL returns the generative API base URL
func (c *EnvConfig) APIBaseURL() string {
	return c.apiBaseURL
}

// Model returns the generation model identifier
func (c *EnvConfig) Model() string {
	return c.model
}

// PollInterval returns the delay between file-state polls
func (c *EnvConfig) PollInterval() time.Duration {
	return c.pollInterval
}

// PollAttempts returns the maximum number of file-state polls
func (c *EnvConfig) PollAttempts() int {
	return c.pollAttempts
}

// Headless reports whether the tray icon should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
