package commands

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/colonyops/steward/internal/core/vault"
	"github.com/colonyops/steward/internal/steward"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	VaultDir   string
	Contacts   string

	// Config is loaded in the Before hook and available to all commands
	Config vault.Config

	// App holds the wired services for the active vault
	App *steward.App
}

// KnownContacts returns the parsed contact allow-list, or nil if not
// set.
func (f *Flags) KnownContacts() []string {
	if f.Contacts == "" {
		return nil
	}
	contacts := strings.Split(f.Contacts, ",")
	for i, c := range contacts {
		contacts[i] = strings.TrimSpace(c)
	}
	return contacts
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "steward", "config.yaml")
}

// DefaultVaultDir returns the default vault root: the current directory.
func DefaultVaultDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/steward/steward.log
// On Linux: $XDG_STATE_HOME/steward/steward.log (defaults to ~/.local/state/steward/steward.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "steward", "steward.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "steward", "steward.log")
	}

	return filepath.Join(home, ".local", "state", "steward", "steward.log")
}
