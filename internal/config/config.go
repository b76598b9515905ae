// Package config loads .monopub.yaml, applies environment overrides and
// defaults, and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/manifest"
	"github.com/indaco/monopub/internal/registry"
	"github.com/indaco/monopub/internal/release"
	"github.com/indaco/monopub/internal/semver"
	"github.com/indaco/monopub/internal/workspace"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = ".monopub.yaml"

// Environment variables read by Load.
const (
	EnvConfigPath   = "MONOPUB_CONFIG"
	EnvRegistry     = "MONOPUB_REGISTRY"
	EnvStep         = "MONOPUB_STEP"
	EnvCommitBranch = "MONOPUB_COMMIT_BRANCH"
)

// Defaults applied to absent fields.
const (
	DefaultStep          = "patch"
	DefaultRegistry      = "https://registry.npmjs.org"
	DefaultCommitMessage = "chore(release): publish"
)

// WorkspaceConfig locates the packages of the monorepo.
type WorkspaceConfig struct {
	Packages []string `yaml:"packages,omitempty"`
	Manifest string   `yaml:"manifest,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

// ManifestConfig controls how manifests are rewritten.
type ManifestConfig struct {
	Strategy      string `yaml:"strategy,omitempty"`
	PreserveRange bool   `yaml:"preserve-range,omitempty"`
}

// PublishConfig holds the registry publish command line.
type PublishConfig struct {
	Command []string `yaml:"command,omitempty"`
}

// Config is the decoded .monopub.yaml.
type Config struct {
	VersionUpgradeStep             string           `yaml:"version-upgrade-step,omitempty"`
	PublishRegistry                string           `yaml:"publish-registry,omitempty"`
	PublishBlacklist               []string         `yaml:"publish-blacklist,omitempty"`
	PublishWhenDependencyPublished *bool            `yaml:"publish-when-dependency-published,omitempty"`
	CommitBranch                   string           `yaml:"commit-branch,omitempty"`
	CommitMessage                  string           `yaml:"commit-message,omitempty"`
	Remote                         string           `yaml:"remote,omitempty"`
	TagReleases                    bool             `yaml:"tag-releases,omitempty"`
	Workspace                      *WorkspaceConfig `yaml:"workspace,omitempty"`
	Manifest                       *ManifestConfig  `yaml:"manifest,omitempty"`
	Publish                        *PublishConfig   `yaml:"publish,omitempty"`

	// File is the path the configuration was read from; empty when no
	// file exists and defaults are in use.
	File string `yaml:"-"`
	// Root is the repository root workspace globs are relative to.
	Root string `yaml:"-"`
}

// LoadConfigFn loads the configuration for the current process. Tests
// replace it to inject a configuration.
var LoadConfigFn = loadConfig

func loadConfig() (*Config, error) {
	path := DefaultConfigFile
	explicit := false
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		path = filepath.Clean(envPath)
		explicit = true
	}

	cfg, err := Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg = &Config{Root: "."}
		} else {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

// Load strictly decodes the configuration file at path. Unknown keys are
// errors. Defaults and environment overrides are not applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrConfiguration, path, err)
	}

	cfg.File = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Decode strictly decodes configuration YAML.
func Decode(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from the MONOPUB_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvRegistry)); v != "" {
		c.PublishRegistry = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStep)); v != "" {
		c.VersionUpgradeStep = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCommitBranch)); v != "" {
		c.CommitBranch = v
	}
}

// ApplyDefaults fills every absent field.
func (c *Config) ApplyDefaults() {
	if c.VersionUpgradeStep == "" {
		c.VersionUpgradeStep = DefaultStep
	}
	if c.PublishRegistry == "" {
		c.PublishRegistry = DefaultRegistry
	}
	if c.PublishWhenDependencyPublished == nil {
		cascade := true
		c.PublishWhenDependencyPublished = &cascade
	}
	if c.CommitMessage == "" {
		c.CommitMessage = DefaultCommitMessage
	}
	if c.Remote == "" {
		c.Remote = release.DefaultRemote
	}
	if c.Workspace == nil {
		c.Workspace = &WorkspaceConfig{}
	}
	if c.Workspace.Packages == nil {
		c.Workspace.Packages = slices.Clone(workspace.DefaultPatterns)
	}
	if c.Workspace.Manifest == "" {
		c.Workspace.Manifest = manifest.DefaultFileName
	}
	if c.Manifest == nil {
		c.Manifest = &ManifestConfig{}
	}
	if c.Manifest.Strategy == "" {
		c.Manifest.Strategy = string(manifest.StrategyStructured)
	}
	if c.Publish == nil {
		c.Publish = &PublishConfig{}
	}
	if len(c.Publish.Command) == 0 {
		c.Publish.Command = slices.Clone(registry.DefaultCommand)
	}
	if c.Root == "" {
		c.Root = "."
	}
}

// Validate reports the first setting a release cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if strings.TrimSpace(c.PublishRegistry) == "" {
		return fmt.Errorf("%w: publish-registry is empty", core.ErrConfiguration)
	}
	if c.Workspace == nil || len(c.Workspace.Packages) == 0 {
		return fmt.Errorf("%w: workspace.packages is empty", core.ErrConfiguration)
	}
	if c.Manifest != nil && !manifest.Strategy(c.Manifest.Strategy).IsValid() {
		return fmt.Errorf("%w: unknown manifest strategy %q", core.ErrConfiguration, c.Manifest.Strategy)
	}
	if c.Publish == nil || len(c.Publish.Command) == 0 || strings.TrimSpace(c.Publish.Command[0]) == "" {
		return fmt.Errorf("%w: publish.command is empty", core.ErrConfiguration)
	}
	return nil
}

// Policy parses the configured version upgrade step.
func (c *Config) Policy() (semver.BumpPolicy, error) {
	return semver.ParsePolicy(c.VersionUpgradeStep)
}

// Cascade reports whether dependents of published packages are published too.
func (c *Config) Cascade() bool {
	return c.PublishWhenDependencyPublished == nil || *c.PublishWhenDependencyPublished
}

// ManifestOptions returns the manifest editor options.
func (c *Config) ManifestOptions() manifest.Options {
	opts := manifest.Options{}
	if c.Workspace != nil {
		opts.FileName = c.Workspace.Manifest
	}
	if c.Manifest != nil {
		opts.Strategy = manifest.Strategy(c.Manifest.Strategy)
		opts.PreserveRange = c.Manifest.PreserveRange
	}
	return opts
}

// LoaderOptions returns the workspace discovery options.
func (c *Config) LoaderOptions() workspace.LoaderOptions {
	opts := workspace.LoaderOptions{Root: c.Root}
	if c.Workspace != nil {
		opts.Patterns = c.Workspace.Packages
		opts.Exclude = c.Workspace.Exclude
		opts.ManifestFile = c.Workspace.Manifest
	}
	return opts
}

// CommitOptions returns the release commit options.
func (c *Config) CommitOptions() release.CommitOptions {
	return release.CommitOptions{
		Branch:  c.CommitBranch,
		Message: c.CommitMessage,
		Remote:  c.Remote,
		Tags:    c.TagReleases,
	}
}

// PublishCommand returns the configured registry publish command line.
func (c *Config) PublishCommand() []string {
	if c.Publish == nil {
		return nil
	}
	return c.Publish.Command
}
