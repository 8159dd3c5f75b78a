// Package config loads the event subsystem settings of the surrounding
// server from YAML or JSON files.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/eventspace/pkg/eventspace/history"
)

// Settings holds the tunables of the event subsystem.
type Settings struct {
	// MaxQueueLength is the local queue capacity for monitored items.
	// Zero or negative means unbounded.
	MaxQueueLength int `yaml:"max_queue_length" json:"max_queue_length"`

	// DiscardOldest selects the queue overflow policy: drop the oldest
	// notification (true) or the incoming one (false).
	DiscardOldest bool `yaml:"discard_oldest" json:"discard_oldest"`

	// HistoryPath is the SQLite file backing the event journal.
	// Empty selects the in-memory journal.
	HistoryPath string `yaml:"history_path" json:"history_path"`

	// HistoryRetention bounds how long journal records are kept, as a
	// Go duration string (e.g. "168h"). Empty disables pruning.
	HistoryRetention string `yaml:"history_retention" json:"history_retention"`

	// LogLevel is the slog level name: debug, info, warn, or error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the settings used when no file is supplied.
func Default() Settings {
	return Settings{
		MaxQueueLength: 100,
		DiscardOldest:  true,
		LogLevel:       "info",
	}
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if s.HistoryRetention != "" {
		if _, err := time.ParseDuration(s.HistoryRetention); err != nil {
			return fmt.Errorf("history_retention: %w", err)
		}
	}
	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", s.LogLevel)
	}
	return nil
}

// Retention returns the parsed retention window, or zero when disabled.
func (s Settings) Retention() time.Duration {
	if s.HistoryRetention == "" {
		return 0
	}
	d, err := time.ParseDuration(s.HistoryRetention)
	if err != nil {
		return 0
	}
	return d
}

// SlogLevel maps the configured level name onto a slog.Level.
func (s Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenHistory opens the journal the settings describe: SQLite when
// HistoryPath is set, in-memory otherwise.
func (s Settings) OpenHistory() (history.Store, error) {
	if s.HistoryPath == "" {
		return history.NewMemoryStore(), nil
	}
	return history.NewSQLiteStore(s.HistoryPath)
}
