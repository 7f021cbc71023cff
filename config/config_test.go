package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.yml")
	require.NoError(t, os.WriteFile(path, []byte("remote:\n  host: dev@eon\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev@eon", cfg.Remote.Host)
	assert.Equal(t, []string{".jsonl"}, cfg.SessionExtensions)
	assert.Equal(t, 10, cfg.Remote.ConnectTimeoutSeconds)
	assert.Equal(t, "~/.claude/projects", cfg.Remote.SessionsRoot)
	// Manifest dir derives from the backup root.
	assert.Equal(t, cfg.Backup.Root+"/manifests", cfg.Backup.ManifestDir)
	// Local paths are expanded to absolute.
	assert.True(t, filepath.IsAbs(cfg.Local.SessionsRoot))
	assert.True(t, filepath.IsAbs(cfg.Backup.Root))
	// Migration target falls back to the live store root.
	assert.Equal(t, cfg.Local.SessionsRoot, cfg.Migration.TargetRoot)
}

func TestLoadExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.yml")
	content := `
local:
  sessions_root: ` + dir + `/store
remote:
  host: dev@eon
  sessions_root: /home/dev/.claude/projects
  backup_root: /home/dev/.claude-backups
  connect_timeout_seconds: 5
backup:
  root: ` + dir + `/backups
migration:
  legacy_root: ` + dir + `/legacy
  home_prefixes: ["-home-tca-", "-Users-terryli-"]
session_extensions: [".jsonl", ".ndjson"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir+"/store", cfg.Local.SessionsRoot)
	assert.Equal(t, "/home/dev/.claude/projects", cfg.Remote.SessionsRoot)
	assert.Equal(t, 5, cfg.Remote.ConnectTimeoutSeconds)
	assert.Equal(t, dir+"/backups/manifests", cfg.Backup.ManifestDir)
	assert.Equal(t, dir+"/legacy", cfg.Migration.LegacyRoot)
	assert.Equal(t, []string{".jsonl", ".ndjson"}, cfg.SessionExtensions)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestUnmarshalExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.yml")
	content := `
logging:
  level: debug
  report_caller: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	var logCfg struct {
		Level        string `mapstructure:"level"`
		ReportCaller bool   `mapstructure:"report_caller"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.ReportCaller)
}
