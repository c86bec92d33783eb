// pkg/core/config.go
package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable that may point at the config file
const ConfigEnv = "HOPSDIST_CONFIG"

// Config holds hopsdist tool configuration
type Config struct {
	OutputDir string   `yaml:"output_dir"`
	Format    string   `yaml:"format"`
	LogLevel  string   `yaml:"log_level"`
	LogFile   string   `yaml:"log_file"`
	Debug     bool     `yaml:"debug"`
	Revision  bool     `yaml:"revision"`
	Installer []string `yaml:"installer"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "dist",
		Format:    "gztar",
		LogLevel:  "info",
		LogFile:   "",
		Debug:     false,
		Revision:  true,
		Installer: []string{"python3", "-m", "pip", "install"},
	}
}

// DefaultConfigPath returns $HOME/.config/hopsdist/config.yaml, or the
// value of HOPSDIST_CONFIG when set
func DefaultConfigPath() string {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hopsdist", "config.yaml")
}

// LoadConfig loads configuration from file. Keys absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return fmt.Errorf("no config path available")
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
