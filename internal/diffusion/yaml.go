package diffusion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region yaml

// LoadConfig reads an adjacency configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read graph config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse graph config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes an adjacency configuration to a YAML file.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal graph config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write graph config %s: %w", path, err)
	}
	return nil
}

// #endregion yaml
