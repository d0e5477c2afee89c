package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFilePath returns the config file location following the XDG spec.
func DefaultFilePath() string {
	return filepath.Join(xdg.ConfigHome, "dailyclocks", "config.yaml")
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (a missing file is fine), then environment overrides.
func Load(fs afero.Fs, path string) (*RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if err := cfg.LoadFile(fs, path); err != nil {
		return nil, err
	}
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into c. Keys absent from the file
// keep their current values.
func (c *RuntimeConfig) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Marshal renders c as YAML, in the same shape LoadFile reads.
func (c *RuntimeConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
