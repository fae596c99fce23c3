package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
exchange:
  api_key: key
  api_secret: secret
sheets:
  spreadsheet_id: sheet-id
`

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8787", cfg.App.HTTPAddr)
	assert.Equal(t, "https://api.india.delta.exchange", cfg.Exchange.BaseURL)
	assert.Equal(t, 15, cfg.Exchange.TimeoutSeconds)
	assert.Equal(t, "Delta Alerts", cfg.Sheets.Worksheet)
	assert.Equal(t, 15, cfg.Monitor.IntervalSeconds)
	assert.True(t, cfg.Monitor.RunImmediately)
	assert.False(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadExplicitValuesBeatDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", minimalConfig+`
app:
  log_level: debug
monitor:
  interval_seconds: 60
  run_immediately: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 60, cfg.Monitor.IntervalSeconds)
	// An explicit false survives the startup-run default.
	assert.False(t, cfg.Monitor.RunImmediately)
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
exchange:
  api_key: base-key
  api_secret: base-secret
  timeout_seconds: 30
sheets:
  spreadsheet_id: base-sheet
`)
	path := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
exchange:
  api_key: override-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// The including file wins, everything else flows through.
	assert.Equal(t, "override-key", cfg.Exchange.APIKey)
	assert.Equal(t, "base-secret", cfg.Exchange.APISecret)
	assert.Equal(t, 30, cfg.Exchange.TimeoutSeconds)
	assert.Equal(t, "base-sheet", cfg.Sheets.SpreadsheetID)
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeConfig(t, dir, "b.yaml", "include: [a.yaml]\n")

	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
sheets:
  spreadsheet_id: sheet-id
`)
	t.Setenv("DELTA_API_KEY", "env-key")
	t.Setenv("DELTA_API_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEET_ID", "env-sheet")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Exchange.APIKey)
	assert.Equal(t, "env-secret", cfg.Exchange.APISecret)
	assert.Equal(t, "env-sheet", cfg.Sheets.SpreadsheetID)
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()

	path := writeConfig(t, dir, "no-key.yaml", `
exchange:
  api_secret: secret
sheets:
  spreadsheet_id: sheet-id
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")

	path = writeConfig(t, dir, "no-sheet.yaml", `
exchange:
  api_key: key
  api_secret: secret
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet_id")

	path = writeConfig(t, dir, "telegram.yaml", minimalConfig+`
notify:
  telegram:
    enabled: true
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}
