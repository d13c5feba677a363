package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
type Config struct {
	// Storage paths
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Startup migration behavior
	Migration MigrationConfig `json:"migration" mapstructure:"migration"`

	// Search behavior
	Search SearchConfig `json:"search" mapstructure:"search"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`
}

// StorageConfig for local data paths.
type StorageConfig struct {
	DataDir   string `json:"data_dir" mapstructure:"data_dir"`     // Base directory for all data
	StorePath string `json:"store_path" mapstructure:"store_path"` // Document store database file
	FilesDir  string `json:"files_dir" mapstructure:"files_dir"`   // Page image / thumbnail files
}

// MigrationConfig for the one-shot legacy store migration.
type MigrationConfig struct {
	BatchSize    int    `json:"batch_size" mapstructure:"batch_size"`       // Rows per insert batch
	BackupSuffix string `json:"backup_suffix" mapstructure:"backup_suffix"` // Appended to the store path
}

// SearchConfig for query behavior.
type SearchConfig struct {
	MaxResults int `json:"max_results" mapstructure:"max_results"` // Result cap, 0 = unlimited
	HistoryCap int `json:"history_cap" mapstructure:"history_cap"` // Retained search history entries
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	File   string `json:"file" mapstructure:"file"`     // Log file path (empty = stdout)
	Color  bool   `json:"color" mapstructure:"color"`   // Enable colored output
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".aiscan"

	return &Config{
		Storage: StorageConfig{
			DataDir:   dataDir,
			StorePath: filepath.Join(dataDir, "documents.db"),
			FilesDir:  filepath.Join(dataDir, "files"),
		},
		Migration: MigrationConfig{
			BatchSize:    200,
			BackupSuffix: ".backup",
		},
		Search: SearchConfig{
			MaxResults: 0,
			HistoryCap: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "",
			Color:  true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Storage.StorePath == "" {
		return errors.New("storage.store_path is required")
	}

	if c.Migration.BatchSize <= 0 {
		return errors.New("migration.batch_size must be positive")
	}

	if c.Migration.BackupSuffix == "" {
		return errors.New("migration.backup_suffix is required")
	}

	if c.Search.MaxResults < 0 {
		return errors.New("search.max_results must not be negative")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		c.Storage.FilesDir,
		filepath.Dir(c.Storage.StorePath),
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
