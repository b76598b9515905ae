package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/manifest"
	"github.com/indaco/monopub/internal/semver"
)

const fullConfig = `version-upgrade-step: alpha
publish-registry: https://npm.example.com
publish-blacklist: [internal-tools]
publish-when-dependency-published: false
commit-branch: origin/main
commit-message: "release: publish"
remote: upstream
tag-releases: true
workspace:
  packages: ["packages/*", "tools/*"]
  manifest: manifest.json
  exclude: ["fixtures"]
manifest:
  strategy: pattern
  preserve-range: true
publish:
  command: ["pnpm", "publish", "--registry", "{registry}", "--no-git-checks"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), core.PermOwnerRW); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, fullConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VersionUpgradeStep != "alpha" {
		t.Errorf("got step %q, want %q", cfg.VersionUpgradeStep, "alpha")
	}
	if cfg.PublishRegistry != "https://npm.example.com" {
		t.Errorf("got registry %q", cfg.PublishRegistry)
	}
	if !slices.Equal(cfg.PublishBlacklist, []string{"internal-tools"}) {
		t.Errorf("got blacklist %q", cfg.PublishBlacklist)
	}
	if cfg.Cascade() {
		t.Error("expected cascade disabled")
	}
	if cfg.File != path || cfg.Root != filepath.Dir(path) {
		t.Errorf("got file %q root %q", cfg.File, cfg.Root)
	}

	policy, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy: %v", err)
	}
	if policy != semver.Prerelease("alpha") {
		t.Errorf("got policy %v, want prerelease(alpha)", policy)
	}

	opts := cfg.ManifestOptions()
	if opts != (manifest.Options{FileName: "manifest.json", Strategy: manifest.StrategyPattern, PreserveRange: true}) {
		t.Errorf("unexpected manifest options: %+v", opts)
	}

	loader := cfg.LoaderOptions()
	if !slices.Equal(loader.Patterns, []string{"packages/*", "tools/*"}) || !slices.Equal(loader.Exclude, []string{"fixtures"}) {
		t.Errorf("unexpected loader options: %+v", loader)
	}

	commit := cfg.CommitOptions()
	if commit.Branch != "origin/main" || commit.Message != "release: publish" || commit.Remote != "upstream" || !commit.Tags {
		t.Errorf("unexpected commit options: %+v", commit)
	}

	if want := []string{"pnpm", "publish", "--registry", "{registry}", "--no-git-checks"}; !slices.Equal(cfg.PublishCommand(), want) {
		t.Errorf("got command %q, want %q", cfg.PublishCommand(), want)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "version-upgrade-step: patch\nregistry: https://x\n"))
		if !errors.Is(err, core.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.VersionUpgradeStep != DefaultStep || cfg.PublishRegistry != DefaultRegistry {
		t.Errorf("unexpected defaults: step %q registry %q", cfg.VersionUpgradeStep, cfg.PublishRegistry)
	}
	if !cfg.Cascade() {
		t.Error("expected cascade enabled by default")
	}
	if cfg.CommitBranch != "" {
		t.Errorf("commit branch should stay empty, got %q", cfg.CommitBranch)
	}
	if cfg.CommitMessage != DefaultCommitMessage || cfg.Remote != "origin" {
		t.Errorf("unexpected commit defaults: %q %q", cfg.CommitMessage, cfg.Remote)
	}
	if !slices.Equal(cfg.Workspace.Packages, []string{"packages/*"}) || cfg.Workspace.Manifest != "package.json" {
		t.Errorf("unexpected workspace defaults: %+v", cfg.Workspace)
	}
	if cfg.Manifest.Strategy != "structured" || cfg.Manifest.PreserveRange {
		t.Errorf("unexpected manifest defaults: %+v", cfg.Manifest)
	}
	if want := []string{"npm", "publish", "--registry", "{registry}"}; !slices.Equal(cfg.PublishCommand(), want) {
		t.Errorf("got command %q, want %q", cfg.PublishCommand(), want)
	}
	if cfg.Root != "." {
		t.Errorf("got root %q, want %q", cfg.Root, ".")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Workspace.Packages[0] = "apps/*"
	other := &Config{}
	other.ApplyDefaults()
	if other.Workspace.Packages[0] != "packages/*" {
		t.Error("defaults share backing storage between configs")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad step", func(c *Config) { c.VersionUpgradeStep = "not a step" }},
		{"empty registry", func(c *Config) { c.PublishRegistry = " " }},
		{"empty workspace", func(c *Config) { c.Workspace.Packages = []string{} }},
		{"bad strategy", func(c *Config) { c.Manifest.Strategy = "ast" }},
		{"empty command", func(c *Config) { c.Publish.Command = []string{""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, core.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestLoadConfigFn(t *testing.T) {
	t.Run("explicit path with env overrides", func(t *testing.T) {
		path := writeConfig(t, "version-upgrade-step: minor\npublish-registry: https://a.example.com\n")
		t.Setenv(EnvConfigPath, path)
		t.Setenv(EnvRegistry, "https://b.example.com")
		t.Setenv(EnvStep, "beta")
		t.Setenv(EnvCommitBranch, "origin/release")

		cfg, err := LoadConfigFn()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.PublishRegistry != "https://b.example.com" {
			t.Errorf("got registry %q", cfg.PublishRegistry)
		}
		if cfg.VersionUpgradeStep != "beta" {
			t.Errorf("got step %q", cfg.VersionUpgradeStep)
		}
		if cfg.CommitBranch != "origin/release" {
			t.Errorf("got branch %q", cfg.CommitBranch)
		}
		if cfg.File != path {
			t.Errorf("got file %q, want %q", cfg.File, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.yaml"))
		if _, err := LoadConfigFn(); err == nil {
			t.Error("expected error for missing explicit config")
		}
	})

	t.Run("no file falls back to defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Chdir(t.TempDir())

		cfg, err := LoadConfigFn()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.File != "" || cfg.VersionUpgradeStep != DefaultStep {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("default file in working directory", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		dir := filepath.Dir(writeConfig(t, "version-upgrade-step: major\n"))
		t.Chdir(dir)

		cfg, err := LoadConfigFn()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.VersionUpgradeStep != "major" || cfg.Root != "." {
			t.Errorf("got step %q root %q", cfg.VersionUpgradeStep, cfg.Root)
		}
	})
}
