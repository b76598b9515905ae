package clix

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/git"
	"github.com/indaco/monopub/internal/manifest"
	"github.com/indaco/monopub/internal/registry"
	"github.com/indaco/monopub/internal/release"
	"github.com/indaco/monopub/internal/semver"
	"github.com/indaco/monopub/internal/tui"
	"github.com/indaco/monopub/internal/workspace"
)

// Constructors for the external collaborators of a session. Tests replace
// them to avoid running npm and git.
var (
	NewRegistryFn = func(cfg *config.Config, logger *zap.Logger) release.Registry {
		return registry.NewCommandPublisher(cfg.PublishCommand(), cfg.PublishRegistry, logger)
	}
	NewSourceControlFn = func(root string) release.SourceControl {
		return git.NewClient(root)
	}
	NewRevisionSourceFn = func(root string) semver.RevisionSource {
		return git.NewRevisionReader(root)
	}
)

// SessionOptions select how a session touches the outside world.
type SessionOptions struct {
	// DryRun keeps manifest writes in memory, records publishes instead of
	// running them and disables the release commit.
	DryRun bool
	// Spinner shows a spinner around each registry publish.
	Spinner bool
}

// Session is a fully wired release run.
type Session struct {
	// RunID identifies the run in every log line it emits.
	RunID        string
	Config       *config.Config
	Logger       *zap.Logger
	FS           core.FileSystem
	Index        *workspace.Index
	Calculator   *semver.Calculator
	Editor       *manifest.Editor
	Orchestrator *release.Orchestrator
	Committer    *release.Committer

	// Overlay and Recorder are set for dry runs only.
	Overlay  *core.OverlayFileSystem
	Recorder *registry.RecordingPublisher
}

// NewSession validates cfg, builds the workspace index and wires every
// component of a release run.
func NewSession(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts SessionOptions) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	s := &Session{RunID: runID, Config: cfg, Logger: logger.With(zap.String("run", runID))}
	logger = s.Logger

	var base core.FileSystem = core.NewOSFileSystem()
	s.FS = base
	if opts.DryRun {
		s.Overlay = core.NewOverlayFileSystem(base)
		s.FS = s.Overlay
	}

	s.Index, err = workspace.NewLoader(s.FS, cfg.LoaderOptions(), logger).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}

	var reg release.Registry
	if opts.DryRun {
		s.Recorder = registry.NewRecordingPublisher(
			registry.NewCommandPublisher(cfg.PublishCommand(), cfg.PublishRegistry, logger))
		reg = s.Recorder
	} else {
		reg = NewRegistryFn(cfg, logger)
		if opts.Spinner {
			reg = spinnerRegistry{next: reg}
		}
	}

	s.Calculator = semver.NewCalculator(policy, NewRevisionSourceFn(cfg.Root), logger)
	s.Editor = manifest.NewEditor(s.FS, cfg.ManifestOptions(), logger)
	publisher := release.NewPublisher(s.Calculator, s.Editor, reg, logger)
	s.Orchestrator = release.NewOrchestrator(publisher, s.Editor, release.Options{
		Blacklist: cfg.PublishBlacklist,
		Cascade:   cfg.Cascade(),
	}, logger)

	commitOpts := cfg.CommitOptions()
	if opts.DryRun {
		commitOpts.Branch = ""
	}
	s.Committer = release.NewCommitter(NewSourceControlFn(cfg.Root), commitOpts, logger)

	return s, nil
}

// Resolve turns changed package names into index entries.
func (s *Session) Resolve(names []string) ([]workspace.ChangedPackage, error) {
	return workspace.ResolveChanged(s.Index, names)
}

// spinnerRegistry shows a spinner while the wrapped registry publishes.
type spinnerRegistry struct {
	next release.Registry
}

func (r spinnerRegistry) Publish(ctx context.Context, pkg workspace.PackageInfo, version string) error {
	title := fmt.Sprintf("Publishing %s@%s", pkg.Name, version)
	return tui.RunWithSpinner(ctx, title, func(ctx context.Context) error {
		return r.next.Publish(ctx, pkg, version)
	})
}
