// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "tuinoi"

// xdgHome resolves one XDG base directory: the environment variable
// when set, otherwise the standard location under the home directory.
func xdgHome(envVar string, fallback ...string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgHome("XDG_STATE_HOME", ".local", "state")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "tuinoi.db")
}

// DefaultLogPath returns the default path for the log file. The TUI
// owns the terminal, so logs go to a state file instead of stderr.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appDir, "tuinoi.log")
}
