package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/tally/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Output     string
	Paranoid   bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// OutputMode resolves the effective output mode: the --output flag wins over
// the config file, and the renderer resolves "auto" against the terminal.
func (f *Flags) OutputMode() config.OutputMode {
	if f.Output != "" {
		return config.OutputMode(f.Output)
	}
	if f.Config != nil {
		return f.Config.Output.Mode
	}
	return config.OutputAuto
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tally", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
// Tasks live in memory for the lifetime of the process; the data directory
// only holds logs.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tally")
}
