package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  port: 8089
  data_dir: /tmp/engine
scrape:
  request_timeout_seconds: 15
  max_retries: 3
  delay_seconds: 2
polling:
  enabled: true
  interval_seconds: 900
  query: golang developer
  location: Bogota
  scrapers: [linkedin, computrabajo]
sources:
  linkedin:
    enabled: true
    max_pages: 3
  computrabajo:
    enabled: true
  google_jobs:
    enabled: false
auth:
  jwt_secret: "a-long-enough-secret"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8089, cfg.App.Port)
	assert.Equal(t, 3, cfg.Sources.LinkedIn.MaxPages)
	assert.True(t, cfg.Polling.Enabled)
	assert.Equal(t, []string{"linkedin", "computrabajo"}, cfg.Polling.Scrapers)
	assert.Equal(t, 15*60, int(cfg.PollInterval().Seconds()))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	out, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), "errors: %v", v.Errors)
	assert.Equal(t, []string{"linkedin", "computrabajo"}, out.Polling.Scrapers)
}

func TestValidateBadPort(t *testing.T) {
	var cfg Config
	cfg.App.Port = 0
	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
	assert.Contains(t, v.Errors[0], "app.port")
}

func TestValidateEmailRequiresHost(t *testing.T) {
	var cfg Config
	cfg.App.Port = 8089
	cfg.Email.Enabled = true
	cfg.Email.Username = "u@example.com"
	cfg.Email.Mailbox = "INBOX"
	cfg.Polling.EmailSeconds = 300

	_, v := NormalizeAndValidate(cfg)
	require.False(t, v.OK())
	assert.Contains(t, v.Errors[0], "email.imap_host")
}

func TestNormalizeDedupesScraperList(t *testing.T) {
	var cfg Config
	cfg.App.Port = 8089
	cfg.Polling.Scrapers = []string{" linkedin ", "LinkedIn", "", "computrabajo"}

	out, _ := NormalizeAndValidate(cfg)
	assert.Equal(t, []string{"linkedin", "computrabajo"}, out.Polling.Scrapers)
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := t.TempDir()
	def := writeConfig(t, sampleYAML)

	path, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.App.Port)

	// Second call keeps the existing user copy.
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9999\n"), 0o644))
	path2, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	cfg2, err := Load(path2)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg2.App.Port)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveAtomic(path, cfg))

	cfg.App.Port = 8090
	require.NoError(t, SaveAtomic(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8090, reloaded.App.Port)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 8089, bak.App.Port)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	var cfg Config // zero port
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestOverlayEnv(t *testing.T) {
	var cfg Config
	cfg.App.Port = 8089
	t.Setenv("ENGINE_PORT", "9001")
	t.Setenv("ENGINE_JWT_SECRET", "env-secret-value")

	OverlayEnv(&cfg)
	assert.Equal(t, 9001, cfg.App.Port)
	assert.Equal(t, "env-secret-value", cfg.Auth.JWTSecret)
}
