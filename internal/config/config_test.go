package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}

	if !cfg.Sources.Intel.Enabled {
		t.Error("expected intel API enabled by default")
	}
	if cfg.Sources.Intel.APIKeyEnv != "STORYPULSE_API_KEY" {
		t.Errorf("unexpected api_key_env %q", cfg.Sources.Intel.APIKeyEnv)
	}

	if cfg.Layout.Width != 960 || cfg.Layout.Height != 640 {
		t.Errorf("unexpected canvas %fx%f", cfg.Layout.Width, cfg.Layout.Height)
	}
	if cfg.Layout.Iterations != 120 {
		t.Errorf("expected 120 iterations, got %d", cfg.Layout.Iterations)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}

	weights := cfg.CategoryWeights()
	if weights == nil {
		t.Fatal("expected category weights in default config")
	}
	if weights["politics"] != 1.0 {
		t.Errorf("expected politics weight 1.0, got %f", weights["politics"])
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
layout:
  iterations: 40
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Layout.Iterations != 40 {
		t.Errorf("expected 40 iterations, got %d", cfg.Layout.Iterations)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Layout.Width != 960 {
		t.Errorf("expected default width, got %f", cfg.Layout.Width)
	}
	if cfg.Sources.Intel.BaseURL == "" {
		t.Error("expected default intel base URL")
	}
	// No weights section -> nil, meaning built-in defaults downstream.
	if cfg.CategoryWeights() != nil {
		t.Error("expected nil weights for config without overrides")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
