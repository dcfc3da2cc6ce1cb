package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - UNDISORDER_CONFIG_PATH: config file location (default: ~/.config/undisorder.toml)
//   - UNDISORDER_HOME: base directory for undisorder data (default: ~/.local/share/undisorder)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := os.Getenv("UNDISORDER_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "undisorder.toml")
	}

	dataDir := os.Getenv("UNDISORDER_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share", "undisorder")
	}

	return map[string]string{
		"home_dir":    homeDir,
		"config_path": configPath,
		"data_dir":    dataDir,
		"log_dir":     filepath.Join(dataDir, "log"),
	}, nil
}
