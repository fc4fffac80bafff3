package macrolog

import (
	"errors"
	"os"
	"time"

	"github.com/hyperengineering/macrolog/internal/store"
	"github.com/pelletier/go-toml/v2"
)

// Config configures the macrolog client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	LocalPath string `toml:"local_path"`

	// ServerURL is the URL of the Larder sync service.
	// If empty, the client operates in offline-only mode.
	ServerURL string `toml:"server_url"`

	// APIKey authenticates with the sync service.
	APIKey string `toml:"api_key"`

	// SyncDelay is how long a mutation waits before triggering a background
	// sync, so rapid successive mutations batch into one attempt.
	// Defaults to 2 seconds.
	SyncDelay time.Duration `toml:"sync_delay"`

	// AutoSync enables background syncing after mutations.
	// Defaults to true.
	AutoSync bool `toml:"auto_sync"`

	// Debug enables verbose logging of all server API communications.
	Debug bool `toml:"debug"`

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string `toml:"debug_log_path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LocalPath: store.DefaultDBPath(),
		SyncDelay: 2 * time.Second,
		AutoSync:  true,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	MACROLOG_DB_PATH   → LocalPath
//	LARDER_URL         → ServerURL
//	LARDER_API_KEY     → APIKey
//	MACROLOG_DEBUG     → Debug (any non-empty value enables)
//	MACROLOG_DEBUG_LOG → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		LocalPath:    os.Getenv("MACROLOG_DB_PATH"),
		ServerURL:    os.Getenv("LARDER_URL"),
		APIKey:       os.Getenv("LARDER_API_KEY"),
		Debug:        os.Getenv("MACROLOG_DEBUG") != "",
		DebugLogPath: os.Getenv("MACROLOG_DEBUG_LOG"),
	}
}

// LoadConfigFile reads a TOML config file. A missing file is not an error:
// the zero Config is returned so env vars and defaults still apply.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		path = store.DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, &ValidationError{Field: "config file", Message: err.Error()}
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ValidationError{Field: "config file", Message: err.Error()}
	}
	return cfg, nil
}

// Merge overlays non-zero fields of other onto c and returns the result.
// Used to layer file < env < flags.
func (c Config) Merge(other Config) Config {
	if other.LocalPath != "" {
		c.LocalPath = other.LocalPath
	}
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.SyncDelay != 0 {
		c.SyncDelay = other.SyncDelay
	}
	if other.Debug {
		c.Debug = true
	}
	if other.DebugLogPath != "" {
		c.DebugLogPath = other.DebugLogPath
	}
	return c
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}

	if c.ServerURL != "" && c.APIKey == "" {
		return &ValidationError{Field: "APIKey", Message: "required when ServerURL is set"}
	}

	if c.SyncDelay < 0 {
		return &ValidationError{Field: "SyncDelay", Message: "must be non-negative"}
	}

	return nil
}

// IsOffline returns true if the client operates in offline-only mode.
// Offline mode is determined by ServerURL being empty.
func (c *Config) IsOffline() bool {
	return c.ServerURL == ""
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.LocalPath == "" {
		c.LocalPath = defaults.LocalPath
	}
	if c.SyncDelay == 0 {
		c.SyncDelay = defaults.SyncDelay
	}

	return c
}
