package app

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// resetSettingsStateForTest clears the sync.Once singleton and overrides so
// each test observes a fresh load.
func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsErr = nil
	SetJournalPathOverride("")
}

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	userConfigPath := filepath.Join(home, ".config", "faultline", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("journal_path: /tmp/from-user.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("journal_path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-user.db", s.JournalPath)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfigPath := filepath.Join(home, ".config", "faultline", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("journal_path: ["), 0o600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"journal_path: /tmp/read.db",
		"toast_duration_ms: 2500",
		"cache_capacity: 64",
		"cache_ttl_seconds: 120",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/read.db", s.JournalPath)
	require.Equal(t, 2500, s.ToastDurationMS)
	require.Equal(t, 64, s.CacheCapacity)
	require.Equal(t, 120, s.CacheTTLSeconds)
}

func TestEffectiveRuntime_DefaultsAndClamp(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	// No config file: defaults
	cfg := EffectiveRuntime()
	require.Equal(t, 5*time.Second, cfg.ToastDuration)
	require.Equal(t, 256, cfg.CacheCapacity)
	require.Equal(t, time.Minute, cfg.CacheTTL)

	// Out-of-range config values should be clamped/sanitized
	userConfigPath := filepath.Join(home, ".config", "faultline", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte(strings.Join([]string{
		"toast_duration_ms: 1500",
		"cache_capacity: 9999999",
		"cache_ttl_seconds: -5",
		"",
	}, "\n")), 0o600))

	resetSettingsStateForTest()
	cfg = EffectiveRuntime()
	require.Equal(t, 1500*time.Millisecond, cfg.ToastDuration)
	require.Equal(t, 100000, cfg.CacheCapacity)
	require.Equal(t, time.Minute, cfg.CacheTTL, "negative TTL falls back to the default")
}

func TestGetJournalPath_LookupOrder(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	// Default: under the config dir.
	path, err := GetJournalPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "faultline", "journal.db"), path)

	// Env beats default.
	t.Setenv("FAULTLINE_JOURNAL_PATH", "/tmp/env.db")
	path, err = GetJournalPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/env.db", path)

	// Flag override beats env.
	SetJournalPathOverride("/tmp/flag.db")
	path, err = GetJournalPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/flag.db", path)
}
