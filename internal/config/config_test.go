package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, dir string) *Config {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadFrom(t, t.TempDir())

	assert.Equal(t, "Pipeline test", cfg.Sheets.SheetName)
	assert.Equal(t, "https://api.firecrawl.dev/v1", cfg.Firecrawl.BaseURL)
	assert.Equal(t, int64(30000), cfg.Anthropic.SiteMaxTokens)
	assert.Equal(t, int64(2000), cfg.Anthropic.MailMaxTokens)
	assert.Equal(t, "smtp.office365.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "Dan van AiBoostly", cfg.SMTP.FromName)
	assert.Equal(t, 1, cfg.Pipeline.Limit)
	assert.Equal(t, 8000, cfg.Pipeline.MaxScrapeChars)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
sheets:
  spreadsheet_id: sheet-123
  sheet_name: Productie
smtp:
  user: dan@aiboostly.com
pipeline:
  limit: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg := loadFrom(t, dir)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Productie", cfg.Sheets.SheetName)
	assert.Equal(t, "dan@aiboostly.com", cfg.SMTP.User)
	assert.Equal(t, 5, cfg.Pipeline.Limit)
	// Untouched keys keep their defaults.
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEADPILOT_ANTHROPIC_KEY", "sk-test")
	t.Setenv("LEADPILOT_PIPELINE_LIMIT", "3")

	cfg := loadFrom(t, t.TempDir())
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 3, cfg.Pipeline.Limit)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nonsense"}))
}
