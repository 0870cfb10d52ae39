package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources            `yaml:"sources"`
	Weights map[string]float64 `yaml:"category_weights"`
	Layout  Layout             `yaml:"layout"`
	Output  Output             `yaml:"output"`
	Server  Server             `yaml:"server"`
	Logging Logging            `yaml:"logging"`
}

type Sources struct {
	Feeds []Feed      `yaml:"feeds"`
	Intel IntelConfig `yaml:"intel"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// IntelConfig configures the story intelligence API that supplies
// predictions, contradiction records, and cause-effect relations.
type IntelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Layout tunes the force-directed placement. Iterations bounds an
// O(n²·iterations) loop; keep it modest, the simulation targets graphs of
// tens of nodes.
type Layout struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Iterations int     `yaml:"iterations"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for storypulse.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "storypulse")
}

// DataDir returns the XDG data directory for storypulse.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "storypulse")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/storypulse/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'storypulse init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			Intel: IntelConfig{
				Enabled:   true,
				BaseURL:   "https://api.storypulse.dev/v1",
				APIKeyEnv: "STORYPULSE_API_KEY",
			},
		},
		Layout: Layout{
			Width:      960,
			Height:     640,
			Iterations: 120,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// CategoryWeights returns the configured topic weights, or nil when the
// config doesn't override them; callers fall back to the built-in table.
func (c *Config) CategoryWeights() map[string]float64 {
	if len(c.Weights) == 0 {
		return nil
	}
	return c.Weights
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
