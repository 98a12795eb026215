// Package app holds configuration: the config directory, YAML settings with
// defaults, and the journal path resolution used by the CLI.
package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	JournalPath     string `yaml:"journal_path"`
	ToastDurationMS int    `yaml:"toast_duration_ms"`
	CacheCapacity   int    `yaml:"cache_capacity"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// Runtime is the effective, validated configuration.
type Runtime struct {
	ToastDuration time.Duration `json:"toast_duration"`
	CacheCapacity int           `json:"cache_capacity"`
	CacheTTL      time.Duration `json:"cache_ttl"`
}

const (
	defaultToastDurationMS = 5000
	defaultCacheCapacity   = 256
	defaultCacheTTLSeconds = 60

	maxCacheCapacity = 100000
)

// EffectiveRuntime returns validated runtime values with defaults. Invalid or
// missing config values fall back to safe defaults.
func EffectiveRuntime() Runtime {
	cfg := Runtime{
		ToastDuration: defaultToastDurationMS * time.Millisecond,
		CacheCapacity: defaultCacheCapacity,
		CacheTTL:      defaultCacheTTLSeconds * time.Second,
	}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	if s.ToastDurationMS > 0 {
		cfg.ToastDuration = time.Duration(s.ToastDurationMS) * time.Millisecond
	}
	if s.CacheCapacity > 0 {
		cfg.CacheCapacity = s.CacheCapacity
	}
	if s.CacheTTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(s.CacheTTLSeconds) * time.Second
	}

	if cfg.CacheCapacity > maxCacheCapacity {
		cfg.CacheCapacity = maxCacheCapacity
	}
	return cfg
}

//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	journalOverrideMu sync.RWMutex
	journalOverride   string
)

// SetJournalPathOverride sets a process-wide journal path override.
// Intended for CLI flag support (e.g. --journal-path).
func SetJournalPathOverride(path string) {
	journalOverrideMu.Lock()
	journalOverride = path
	journalOverrideMu.Unlock()
}

func getJournalPathOverride() string {
	journalOverrideMu.RLock()
	v := journalOverride
	journalOverrideMu.RUnlock()
	return v
}

// GetJournalPath resolves the error journal location.
// Lookup order (first found wins):
// 1) CLI override (--journal-path)
// 2) FAULTLINE_JOURNAL_PATH environment variable
// 3) journal_path from config.yaml
// 4) ~/.config/faultline/journal.db
func GetJournalPath() (string, error) {
	if v := getJournalPathOverride(); v != "" {
		return v, nil
	}
	if v := os.Getenv("FAULTLINE_JOURNAL_PATH"); v != "" {
		return v, nil
	}
	if s, err := LoadSettings(); err == nil && s.JournalPath != "" {
		return s.JournalPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/faultline/config.yaml
// 2) /etc/faultline/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "faultline", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
