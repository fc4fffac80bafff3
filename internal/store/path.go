package store

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns the root directory for macrolog data.
// Defaults to ~/.macrolog, falls back to ./.macrolog if home dir unavailable.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".macrolog")
	}
	return filepath.Join(home, ".macrolog")
}

// DefaultDBPath returns the full path to the local nutrition database.
func DefaultDBPath() string {
	return filepath.Join(DefaultRoot(), "nutrition.db")
}

// DefaultConfigPath returns the path to the optional TOML config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultRoot(), "config.toml")
}
