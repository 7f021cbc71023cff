package config

import (
	"os"
	"path/filepath"

	"github.com/grovetools/vault/errors"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file discovered by walking up from the working directory.
const ConfigFileName = "vault.yml"

// Load reads configuration from the given file. An empty path triggers
// discovery; a missing config file is not an error, the defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			cfg := Default()
			cfg.applyDefaults()
			if err := cfg.expandLocalPaths(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read configuration")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse "+path)
	}

	cfg.applyDefaults()
	if err := cfg.expandLocalPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads configuration via discovery, falling back to defaults.
func LoadDefault() (*Config, error) {
	return Load("")
}

// FindConfigFile walks up from the current directory looking for vault.yml,
// then falls back to ~/.config/grove/vault.yml.
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidate := filepath.Join(home, ".config", "grove", ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.ConfigNotFound(ConfigFileName)
}
