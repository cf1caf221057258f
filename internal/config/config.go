// Package config loads CodeCompass's on-disk YAML configuration, grounded
// in the teacher's internal/httplink.LoadConfig: read a well-known file
// relative to the workspace root, fall back to documented defaults on any
// read/parse failure rather than failing startup.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileName is the configuration file CodeCompass looks for at the root of
// the workspace it's invoked against.
const fileName = ".codecompass.yml"

// MultiWorkspace controls spec.md §4.D's workspace router: whether a tool
// call's explicit workspace argument is honored at all, and if so which
// roots it may resolve to.
type MultiWorkspace struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedRoots     []string `yaml:"allowed_roots"`
	OnDemandIndexing *bool    `yaml:"on_demand_indexing"`
}

// Config is CodeCompass's full user-overridable configuration surface.
type Config struct {
	MultiWorkspace  MultiWorkspace `yaml:"multi_workspace"`
	FreshnessPolicy string         `yaml:"freshness_policy"`
	BindAddr        string         `yaml:"bind_addr"`
	Port            int            `yaml:"port"`
	NoPrewarm       bool           `yaml:"no_prewarm"`
	WarmsetCapacity int            `yaml:"warmset_capacity"`
	IndexerPath     string         `yaml:"indexer_path"`
	DataDir         string         `yaml:"data_dir"`
}

// Default returns CodeCompass's built-in defaults, used when no config
// file is present or it fails to parse.
func Default() *Config {
	return &Config{
		FreshnessPolicy: "advisory",
		BindAddr:        "127.0.0.1",
		Port:            0,
		WarmsetCapacity: 8,
		IndexerPath:     "codecompass-indexer",
	}
}

// EffectiveDataDir returns the configured data_dir, or the teacher-style
// per-user cache directory (~/.cache/codecompass, falling back to
// os.TempDir() when the home directory can't be resolved) when unset.
func (c *Config) EffectiveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "codecompass")
	}
	return filepath.Join(home, ".cache", "codecompass")
}

// Load reads fileName from dir, returning Default() if the file is
// missing or malformed — mirroring LoadConfig's "never fail startup over
// a bad config file" posture.
func Load(dir string) *Config {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default()
	}
	return cfg
}

// EffectiveOnDemandIndexing returns the configured on-demand indexing
// setting, defaulting to true (an unregistered workspace auto-bootstraps
// and is indexed by the caller's first index_repo call) when unset.
func (c *Config) EffectiveOnDemandIndexing() bool {
	if c.MultiWorkspace.OnDemandIndexing != nil {
		return *c.MultiWorkspace.OnDemandIndexing
	}
	return true
}

// AllowedRootsOrDefault returns the configured allow-list, or nil (no
// restriction) when multi-workspace mode is disabled or no roots were
// configured — the shape internal/workspace.NewRouter expects.
func (c *Config) AllowedRootsOrDefault() []string {
	if !c.MultiWorkspace.Enabled {
		return nil
	}
	return c.MultiWorkspace.AllowedRoots
}
