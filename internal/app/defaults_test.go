package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("UNDISORDER_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("UNDISORDER_HOME", "/custom/undisorder")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["data_dir"] != "/custom/undisorder" {
			t.Errorf("data_dir = %q, want %q", defaults["data_dir"], "/custom/undisorder")
		}
		if defaults["log_dir"] != "/custom/undisorder/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/undisorder/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("UNDISORDER_CONFIG_PATH", "")
		t.Setenv("UNDISORDER_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "undisorder.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantData := filepath.Join(homeDir, ".local", "share", "undisorder")
		if defaults["data_dir"] != wantData {
			t.Errorf("data_dir = %q, want %q", defaults["data_dir"], wantData)
		}

		if defaults["home_dir"] != homeDir {
			t.Errorf("home_dir = %q, want %q", defaults["home_dir"], homeDir)
		}
	})
}
