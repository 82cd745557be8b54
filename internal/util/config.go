// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds zplay configuration settings
type Config struct {
	LessonsPath  string `yaml:"lessons_path" description:"Override lesson catalog path (empty = embedded catalog)"`
	StorageFile  string `yaml:"storage_file" description:"Persisted storage file name inside the data dir" default:"storage.json"`
	ProgressFile string `yaml:"progress_file" description:"Progress file name inside the data dir" default:"progress.yaml"`
	HistoryFile  string `yaml:"history_file" description:"REPL history file name inside the data dir" default:"history"`
	DebounceMs   int    `yaml:"debounce_ms" description:"Watch mode debounce delay in milliseconds" default:"300"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		StorageFile:  "storage.json",
		ProgressFile: "progress.yaml",
		HistoryFile:  "history",
		DebounceMs:   300,
	}
}

// GetConfigPath returns the config file path inside a data directory.
func GetConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads config.yaml from the data directory.
// A missing file is not an error; defaults are returned.
func LoadConfig(dataDir string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(GetConfigPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.StorageFile == "" {
		config.StorageFile = "storage.json"
	}
	if config.ProgressFile == "" {
		config.ProgressFile = "progress.yaml"
	}
	if config.HistoryFile == "" {
		config.HistoryFile = "history"
	}
	if config.DebounceMs <= 0 {
		config.DebounceMs = 300
	}

	return config, nil
}

// ResolveDataDir resolves the data directory: flag > ZPLAY_DATA env var > ~/.zplay
func ResolveDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("ZPLAY_DATA"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zplay"
	}
	return filepath.Join(home, ".zplay")
}
