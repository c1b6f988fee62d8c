package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if cfg.Planning.DefaultBudget != 8000 {
		t.Errorf("budget = %d, want 8000", cfg.Planning.DefaultBudget)
	}
	if cfg.Planning.DefaultModel != "claude-3-sonnet" {
		t.Errorf("model = %q", cfg.Planning.DefaultModel)
	}
	if !cfg.Planning.TieredArchitecture || !cfg.Planning.RelevanceScoring || !cfg.Planning.AutoFilterPackages {
		t.Error("planning stages should default on")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "human" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Planning.DefaultBudget = 12000
	cfg.Planning.RelevanceScoring = false
	cfg.Filter.CustomIgnores = []string{"vendor/", `\.gen\.go$`}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, Dir, "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Planning.DefaultBudget != 12000 {
		t.Errorf("budget = %d, want 12000", loaded.Planning.DefaultBudget)
	}
	if loaded.Planning.RelevanceScoring {
		t.Error("relevance scoring should load as false")
	}
	if len(loaded.Filter.CustomIgnores) != 2 || loaded.Filter.CustomIgnores[0] != "vendor/" {
		t.Errorf("custom ignores = %v", loaded.Filter.CustomIgnores)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	partial := []byte(`{"planning": {"defaultBudget": 4000}}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), partial, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Planning.DefaultBudget != 4000 {
		t.Errorf("budget = %d, want 4000 from file", cfg.Planning.DefaultBudget)
	}
	if cfg.Planning.DefaultModel != "claude-3-sonnet" {
		t.Errorf("model = %q, want default for unset key", cfg.Planning.DefaultModel)
	}
	if cfg.Version != 1 {
		t.Errorf("version = %d, want default 1", cfg.Version)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.Version = 2
	if err := bad.Validate(); err == nil {
		t.Error("unsupported version accepted")
	}

	zero := DefaultConfig()
	zero.Planning.DefaultBudget = 0
	err := zero.Validate()
	if err == nil {
		t.Fatal("zero budget accepted")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok || cfgErr.Field != "planning.defaultBudget" {
		t.Errorf("err = %v, want ConfigError on planning.defaultBudget", err)
	}
}

func TestConfigDir(t *testing.T) {
	if got := ConfigDir("/tmp/project"); got != filepath.Join("/tmp/project", Dir) {
		t.Errorf("ConfigDir = %q", got)
	}
}
