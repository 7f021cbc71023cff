package config

import (
	"fmt"

	"github.com/grovetools/vault/util/pathutil"
	"github.com/mitchellh/mapstructure"
)

// Config is the full vault.yml configuration. Every path the orchestrators
// touch comes from here; nothing is read from ambient globals so that the
// whole pipeline can be pointed at temporary directories in tests.
type Config struct {
	Local     LocalConfig     `yaml:"local"`
	Remote    RemoteConfig    `yaml:"remote"`
	Backup    BackupConfig    `yaml:"backup"`
	Migration MigrationConfig `yaml:"migration"`

	// SessionExtensions is the set of filename extensions that count as
	// session files. Everything else in a store directory is ignored.
	SessionExtensions []string `yaml:"session_extensions"`

	// Extensions holds tool-specific config sections (e.g. "logging") that
	// are decoded on demand with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:",inline"`
}

// LocalConfig describes the session store on the invoking machine.
type LocalConfig struct {
	SessionsRoot string `yaml:"sessions_root"`
}

// RemoteConfig describes the session store on the remote machine and how to
// reach it. All remote paths are interpreted on the remote host; a leading
// "~/" is expanded to the remote $HOME, never the local one.
type RemoteConfig struct {
	Host                  string `yaml:"host"`
	SessionsRoot          string `yaml:"sessions_root"`
	BackupRoot            string `yaml:"backup_root"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

// BackupConfig describes where local snapshots and manifests live.
type BackupConfig struct {
	Root        string `yaml:"root"`
	ManifestDir string `yaml:"manifest_dir"`
}

// MigrationConfig configures the one-shot legacy store migration.
type MigrationConfig struct {
	// LegacyRoot is the tree holding inconsistently named store directories.
	LegacyRoot string `yaml:"legacy_root"`
	// TargetRoot is the canonical store root migrated files are merged into.
	TargetRoot string `yaml:"target_root"`
	// HomePrefixes are the known historical host conventions, each a
	// dash-encoded absolute home directory prefix like "-home-tca-".
	HomePrefixes []string `yaml:"home_prefixes"`
}

// Default returns the configuration used when no vault.yml is present.
func Default() *Config {
	return &Config{
		Local: LocalConfig{
			SessionsRoot: "~/.claude/projects",
		},
		Remote: RemoteConfig{
			SessionsRoot:          "~/.claude/projects",
			BackupRoot:            "~/.claude-backups",
			ConnectTimeoutSeconds: 10,
			CommandTimeoutSeconds: 120,
		},
		Backup: BackupConfig{
			Root: "~/.claude-backups",
		},
		Migration: MigrationConfig{
			HomePrefixes: []string{"-home-tca-", "-Users-terryli-"},
		},
		SessionExtensions: []string{".jsonl"},
	}
}

// applyDefaults fills unset fields from Default and derives dependent paths.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Local.SessionsRoot == "" {
		c.Local.SessionsRoot = d.Local.SessionsRoot
	}
	if c.Remote.SessionsRoot == "" {
		c.Remote.SessionsRoot = d.Remote.SessionsRoot
	}
	if c.Remote.BackupRoot == "" {
		c.Remote.BackupRoot = d.Remote.BackupRoot
	}
	if c.Remote.ConnectTimeoutSeconds <= 0 {
		c.Remote.ConnectTimeoutSeconds = d.Remote.ConnectTimeoutSeconds
	}
	if c.Remote.CommandTimeoutSeconds <= 0 {
		c.Remote.CommandTimeoutSeconds = d.Remote.CommandTimeoutSeconds
	}
	if c.Backup.Root == "" {
		c.Backup.Root = d.Backup.Root
	}
	if c.Backup.ManifestDir == "" {
		c.Backup.ManifestDir = c.Backup.Root + "/manifests"
	}
	if c.Migration.TargetRoot == "" {
		c.Migration.TargetRoot = c.Local.SessionsRoot
	}
	if len(c.Migration.HomePrefixes) == 0 {
		c.Migration.HomePrefixes = d.Migration.HomePrefixes
	}
	if len(c.SessionExtensions) == 0 {
		c.SessionExtensions = d.SessionExtensions
	}
}

// expandLocalPaths resolves ~ and env vars in every path interpreted on the
// invoking machine. Remote paths are left verbatim for the remote shell.
func (c *Config) expandLocalPaths() error {
	for _, p := range []*string{
		&c.Local.SessionsRoot,
		&c.Backup.Root,
		&c.Backup.ManifestDir,
		&c.Migration.LegacyRoot,
		&c.Migration.TargetRoot,
	} {
		if *p == "" {
			continue
		}
		expanded, err := pathutil.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// UnmarshalExtension decodes a named extension section into out.
func (c *Config) UnmarshalExtension(name string, out interface{}) error {
	raw, ok := c.Extensions[name]
	if !ok {
		return nil
	}
	return mapstructure.Decode(raw, out)
}
