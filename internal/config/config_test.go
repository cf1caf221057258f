package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.FreshnessPolicy != "advisory" {
		t.Errorf("expected default freshness_policy advisory, got %q", cfg.FreshnessPolicy)
	}
	if cfg.MultiWorkspace.Enabled {
		t.Error("expected multi_workspace disabled by default")
	}
}

func TestLoadReturnsDefaultsOnMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Load(dir)
	if cfg.FreshnessPolicy != "advisory" {
		t.Errorf("expected fallback to defaults, got %q", cfg.FreshnessPolicy)
	}
}

func TestLoadParsesConfiguredValues(t *testing.T) {
	dir := t.TempDir()
	contents := `
multi_workspace:
  enabled: true
  allowed_roots: ["/repos/a", "/repos/b"]
  on_demand_indexing: false
freshness_policy: strict
bind_addr: "0.0.0.0"
port: 8080
no_prewarm: true
`
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := Load(dir)
	if !cfg.MultiWorkspace.Enabled {
		t.Error("expected multi_workspace.enabled true")
	}
	if len(cfg.MultiWorkspace.AllowedRoots) != 2 {
		t.Errorf("expected 2 allowed roots, got %v", cfg.MultiWorkspace.AllowedRoots)
	}
	if cfg.EffectiveOnDemandIndexing() {
		t.Error("expected on_demand_indexing false to be respected")
	}
	if cfg.FreshnessPolicy != "strict" {
		t.Errorf("expected strict, got %q", cfg.FreshnessPolicy)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if !cfg.NoPrewarm {
		t.Error("expected no_prewarm true")
	}
}

func TestAllowedRootsOrDefaultNilWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.MultiWorkspace.Enabled = false
	cfg.MultiWorkspace.AllowedRoots = []string{"/repos/a"}
	if got := cfg.AllowedRootsOrDefault(); got != nil {
		t.Errorf("expected nil when disabled, got %v", got)
	}
}

func TestEffectiveOnDemandIndexingDefaultsTrue(t *testing.T) {
	cfg := Default()
	if !cfg.EffectiveOnDemandIndexing() {
		t.Error("expected default true")
	}
}
