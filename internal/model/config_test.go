package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:5173", cfg.Server.CORSOrigin)
	assert.Equal(t, LanguageEnglish, cfg.Display.Language)
	assert.Equal(t, DashboardCounts, cfg.Display.DashboardMode)
	assert.Equal(t, "00:05", cfg.Scheduler.RefreshAt)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  backend: JSON
  json_dir: /tmp/planit
server:
  addr: ":9090"
display:
  language: DE
  dashboard_mode: both
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/planit", cfg.Storage.JSONDir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, LanguageGerman, cfg.Display.Language)
	assert.Equal(t, DashboardBoth, cfg.Display.DashboardMode)
	assert.Equal(t, "00:05", cfg.Scheduler.RefreshAt, "unset keys keep defaults")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PLANIT_SERVER_ADDR", ":7070")
	t.Setenv("PLANIT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_RejectsUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  language: fr\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Display.Language = LanguageGerman
	cfg.Display.DashboardMode = DashboardPercentages
	cfg.Server.Addr = ":8181"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, LanguageGerman, loaded.Display.Language)
	assert.Equal(t, DashboardPercentages, loaded.Display.DashboardMode)
	assert.Equal(t, ":8181", loaded.Server.Addr)
}

func TestSettingsCycling(t *testing.T) {
	assert.Equal(t, LanguageGerman, LanguageEnglish.Toggle())
	assert.Equal(t, LanguageEnglish, LanguageGerman.Toggle())
	assert.Equal(t, DashboardPercentages, DashboardCounts.Next())
	assert.Equal(t, DashboardBoth, DashboardPercentages.Next())
	assert.Equal(t, DashboardCounts, DashboardBoth.Next())
}
