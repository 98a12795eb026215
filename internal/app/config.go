package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/faultline/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "faultline"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# faultline configuration
# Run: faultline --help

# Optional: override the error journal location.
# Can also be set via FAULTLINE_JOURNAL_PATH or --journal-path.
# journal_path: ~/.config/faultline/journal.db

# Default toast auto-expiry in milliseconds (default 5000).
# toast_duration_ms: 5000

# GET response cache sizing.
# cache_capacity: 256
# cache_ttl_seconds: 60
`
