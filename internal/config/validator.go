package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/git"
	"github.com/indaco/monopub/internal/semver"
	"github.com/indaco/monopub/internal/workspace"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	// Category is the validation category (e.g., "YAML Syntax", "Registry").
	Category string

	// Passed indicates if the check passed.
	Passed bool

	// Message provides details about the validation result.
	Message string

	// Warning indicates if this is a warning rather than an error.
	Warning bool
}

// Validator checks a configuration against the workspace it describes.
type Validator struct {
	fs           core.FileSystem
	cfg          *Config
	isRepository func(dir string) bool
	validations  []ValidationResult
}

// NewValidator creates a new configuration validator.
func NewValidator(fs core.FileSystem, cfg *Config) *Validator {
	return &Validator{
		fs:           fs,
		cfg:          cfg,
		isRepository: git.IsRepository,
	}
}

// Validate runs all validation checks and returns the results.
func (v *Validator) Validate(ctx context.Context) ([]ValidationResult, error) {
	v.validations = make([]ValidationResult, 0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.validateYAMLSyntax(ctx)
	v.validateStep()
	v.validateRegistry()
	v.validateManifestSettings()
	v.validateWorkspace(ctx)
	v.validateSourceControl()

	return v.validations, nil
}

func (v *Validator) validateYAMLSyntax(ctx context.Context) {
	if v.cfg.File == "" {
		v.addValidation("YAML Syntax", true, "No "+DefaultConfigFile+" found, using defaults", true)
		return
	}

	data, err := v.fs.ReadFile(ctx, v.cfg.File)
	if err != nil {
		v.addValidation("YAML Syntax", false, fmt.Sprintf("Cannot read %s: %v", v.cfg.File, err), false)
		return
	}
	if _, err := Decode(data); err != nil {
		v.addValidation("YAML Syntax", false, fmt.Sprintf("Invalid configuration in %s: %v", v.cfg.File, err), false)
		return
	}
	v.addValidation("YAML Syntax", true, v.cfg.File+" is valid", false)
}

func (v *Validator) validateStep() {
	policy, err := v.cfg.Policy()
	if err != nil {
		v.addValidation("Version Step", false, err.Error(), false)
		return
	}
	v.addValidation("Version Step", true, "Bump policy: "+policy.String(), false)
}

func (v *Validator) validateRegistry() {
	u, err := url.Parse(v.cfg.PublishRegistry)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.addValidation("Registry", false,
			fmt.Sprintf("publish-registry %q is not an http(s) URL", v.cfg.PublishRegistry), false)
		return
	}
	if u.Scheme == "http" {
		v.addValidation("Registry", true,
			fmt.Sprintf("publish-registry %q does not use TLS", v.cfg.PublishRegistry), true)
		return
	}
	v.addValidation("Registry", true, "Publishing to "+v.cfg.PublishRegistry, false)
}

func (v *Validator) validateManifestSettings() {
	opts := v.cfg.ManifestOptions()
	if !opts.Strategy.IsValid() {
		v.addValidation("Settings", false,
			fmt.Sprintf("Unknown manifest strategy %q (want structured or pattern)", opts.Strategy), false)
		return
	}
	if cmd := v.cfg.PublishCommand(); len(cmd) == 0 || cmd[0] == "" {
		v.addValidation("Settings", false, "publish.command is empty", false)
		return
	}
	v.addValidation("Settings", true,
		fmt.Sprintf("Manifest strategy %q, cascade %t", opts.Strategy, v.cfg.Cascade()), false)
}

func (v *Validator) validateWorkspace(ctx context.Context) {
	loader := workspace.NewLoader(v.fs, v.cfg.LoaderOptions(), nil)

	dirs, err := loader.PackageDirs(ctx)
	if err != nil {
		v.addValidation("Workspace", false, err.Error(), false)
		return
	}
	if len(dirs) == 0 {
		v.addValidation("Workspace", false,
			fmt.Sprintf("No %s found for patterns %v", v.cfg.LoaderOptions().ManifestFile, v.cfg.LoaderOptions().Patterns), false)
		return
	}

	idx, err := loader.Load(ctx)
	if err != nil {
		v.addValidation("Packages", false, err.Error(), false)
		return
	}
	v.addValidation("Packages", true, fmt.Sprintf("%d package(s) indexed", idx.Len()), false)

	for _, pkg := range idx.Packages() {
		if _, err := semver.ParseVersion(pkg.Version); err != nil {
			v.addValidation("Packages", true,
				fmt.Sprintf("Package %q has an unusable version %q", pkg.Name, pkg.Version), true)
		}
	}

	for _, name := range v.cfg.PublishBlacklist {
		if _, ok := idx.Find(name); !ok {
			v.addValidation("Blacklist", true,
				fmt.Sprintf("Blacklisted package %q is not in the workspace", name), true)
		}
	}
}

func (v *Validator) validateSourceControl() {
	if v.cfg.CommitBranch == "" {
		v.addValidation("Source Control", true, "No commit-branch set, release commit disabled", false)
		return
	}
	if !v.isRepository(v.cfg.Root) {
		v.addValidation("Source Control", false,
			fmt.Sprintf("commit-branch %q is set but %s is not a git repository", v.cfg.CommitBranch, v.cfg.Root), false)
		return
	}
	v.addValidation("Source Control", true, "Release commit pushes to "+v.cfg.CommitBranch, false)
}

// addValidation adds a validation result to the list.
func (v *Validator) addValidation(category string, passed bool, message string, warning bool) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Passed:   passed,
		Message:  message,
		Warning:  warning,
	})
}

// HasErrors returns true if any validation failed.
func HasErrors(results []ValidationResult) bool {
	return ErrorCount(results) > 0
}

// ErrorCount returns the number of failed validations.
func ErrorCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if !r.Passed && !r.Warning {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warnings.
func WarningCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if r.Warning {
			count++
		}
	}
	return count
}
