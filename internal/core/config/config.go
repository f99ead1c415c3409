// Package config handles configuration loading and validation for tally.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OutputMode selects how results are rendered.
type OutputMode string

const (
	// OutputAuto picks pretty on a terminal, json otherwise.
	OutputAuto   OutputMode = "auto"
	OutputPretty OutputMode = "pretty"
	OutputJSON   OutputMode = "json"
)

// IsValid reports whether the mode is a known value.
func (m OutputMode) IsValid() bool {
	switch m {
	case OutputAuto, OutputPretty, OutputJSON:
		return true
	}
	return false
}

// Config holds the application configuration.
type Config struct {
	EventLog EventLogConfig `yaml:"event_log"`
	Grammar  GrammarConfig  `yaml:"grammar"`
	Confirm  ConfirmConfig  `yaml:"confirm"`
	Output   OutputConfig   `yaml:"output"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// EventLogConfig bounds the in-memory event log.
type EventLogConfig struct {
	// MaxEntries caps the retained event count; oldest events are evicted
	// past the cap, which trades full replay-from-zero for bounded memory.
	// 0 keeps the log unbounded (the default: the replay guarantee wins).
	MaxEntries int `yaml:"max_entries"`
}

// GrammarConfig extends the built-in command grammar.
type GrammarConfig struct {
	// Synonyms maps extra aliases to built-in command names.
	Synonyms map[string]string `yaml:"synonyms"`
}

// ConfirmConfig controls destructive-command confirmation.
type ConfirmConfig struct {
	// AssumeYes skips interactive confirmation prompts. REPL confirmation
	// dialogs are unaffected; this only covers one-shot commands.
	AssumeYes bool `yaml:"assume_yes"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Mode OutputMode `yaml:"mode"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EventLog: EventLogConfig{MaxEntries: 0},
		Grammar:  GrammarConfig{Synonyms: map[string]string{}},
		Output:   OutputConfig{Mode: OutputAuto},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if cfg.Output.Mode == "" {
		cfg.Output.Mode = OutputAuto
	}

	return &cfg, nil
}

// LogsDir returns the directory for log files under the data directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
