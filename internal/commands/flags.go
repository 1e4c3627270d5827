package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/annosync/internal/core/config"
	"github.com/colonyops/annosync/internal/core/kv"
	"github.com/colonyops/annosync/internal/core/syncstate"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Version is the build version, used for the update check.
	Version string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store is the shared KV store backing sync records and caches
	Store kv.KV

	// Tracker reads and writes per-item sync records
	Tracker *syncstate.Tracker
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "annosync", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "annosync")
}
