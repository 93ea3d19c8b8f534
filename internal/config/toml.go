// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	LogLevel *string `toml:"log-level"`

	Game GameConfig `toml:"game"`
	Play PlayConfig `toml:"play"`
	UI   UIConfig   `toml:"ui"`
	Keys KeysConfig `toml:"keys"`
}

// GameConfig maps board settings. Pegs are numbered from 1 in the
// file; the goal accepts a peg number or "any".
type GameConfig struct {
	Disks   *int    `toml:"disks"`
	Pegs    *int    `toml:"pegs"`
	Start   *int    `toml:"start"`
	Goal    *string `toml:"goal"`
	Variant *string `toml:"variant"`
}

// PlayConfig maps session behavior settings.
type PlayConfig struct {
	Undo          *bool `toml:"undo"`
	ResetOnReject *bool `toml:"reset-on-reject"`
	Blindfold     *bool `toml:"blindfold"`
}

// UIConfig maps rendering settings.
type UIConfig struct {
	Theme *string `toml:"theme"`
	Timer *bool   `toml:"timer"`
}

// KeysConfig maps key binding settings.
type KeysConfig struct {
	Quick *string `toml:"quick"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
