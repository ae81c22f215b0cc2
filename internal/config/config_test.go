package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.75, cfg.Settings.Threshold)
	assert.Equal(t, 0.01, cfg.Settings.Tolerance)
	assert.False(t, cfg.Settings.Grouping)
	assert.Equal(t, 7, cfg.Settings.DateWindow)
	assert.True(t, cfg.Settings.UseCustomer)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
settings:
  threshold: 0.8
  grouping: true
dictionaries:
  transaction:
    description: ["wording"]
mappings:
  ledger:
    amount: "Gross Value"
logging:
  level: debug
export:
  path: out/report.xlsx
`)

	cfg, err := Load(path)

	assert.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Settings.Threshold)
	assert.True(t, cfg.Settings.Grouping)
	// omitted fields keep their defaults
	assert.Equal(t, 0.01, cfg.Settings.Tolerance)
	assert.Equal(t, 7, cfg.Settings.DateWindow)
	assert.True(t, cfg.Settings.UseCustomer)

	assert.Equal(t, []string{"wording"}, cfg.Dictionaries.Transaction["description"])
	assert.Equal(t, "Gross Value", cfg.Mappings.Ledger["amount"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "out/report.xlsx", cfg.Export.Path)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("REPORT_DIR", "/tmp/reports")
	path := writeTempConfig(t, `
export:
  path: ${REPORT_DIR}/out.xlsx
`)

	cfg, err := Load(path)

	assert.NoError(t, err)
	assert.Equal(t, "/tmp/reports/out.xlsx", cfg.Export.Path)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load("nonexistent.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTempConfig(t, "settings: [not a map")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadOrEnv(t *testing.T) {
	t.Run("empty path uses env overrides", func(t *testing.T) {
		t.Setenv("RECON_THRESHOLD", "0.9")
		t.Setenv("RECON_LOG_LEVEL", "debug")

		cfg, err := LoadOrEnv("")

		assert.NoError(t, err)
		assert.Equal(t, 0.9, cfg.Settings.Threshold)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 0.01, cfg.Settings.Tolerance)
	})

	t.Run("invalid env value fails", func(t *testing.T) {
		t.Setenv("RECON_THRESHOLD", "very high")
		_, err := LoadOrEnv("")
		assert.Error(t, err)
	})
}

func TestSettingsConfig_ToDomain(t *testing.T) {
	settings := Default().Settings.ToDomain()

	assert.NoError(t, settings.Validate())
	assert.Equal(t, 0.75, settings.Threshold)
	assert.True(t, settings.Tolerance.Equal(settings.Tolerance.Round(2)))
}
