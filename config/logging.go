package config

import (
	"fmt"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/dispatch/logging"
)

// LoggingConfig defines settings for the dispatch log store and the console
// log level.
type LoggingConfig struct {
	// Backend selects the log store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// Level is the console log level: "debug", "info", "warn" or "error".
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "dispatch.log"
	}
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	return nil
}

// BuildStore opens the configured log store.
func (c LoggingConfig) BuildStore() (logging.LogStore, error) {
	switch c.Backend {
	case "sqlite":
		return logging.NewSQLiteStore(c.Path)
	default:
		return logging.NewJSONLStore(c.Path)
	}
}
