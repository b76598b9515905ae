package release

import (
	"context"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/workspace"
)

// Options control the propagation rules of a run.
type Options struct {
	// Blacklist names packages that are never published nor rewritten.
	Blacklist []string
	// Cascade publishes the dependents of every published changed package.
	Cascade bool
}

// Orchestrator walks the changed packages and drives the Publisher.
type Orchestrator struct {
	publisher *Publisher
	editor    ManifestEditor
	blacklist map[string]struct{}
	cascade   bool
	logger    *zap.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(publisher *Publisher, editor ManifestEditor, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	blacklist := make(map[string]struct{}, len(opts.Blacklist))
	for _, name := range opts.Blacklist {
		blacklist[name] = struct{}{}
	}
	return &Orchestrator{
		publisher: publisher,
		editor:    editor,
		blacklist: blacklist,
		cascade:   opts.Cascade,
		logger:    logger,
	}
}

// Run publishes every changed package in order and, when cascading, rewrites
// each dependent's declaration of it and publishes dependents not already
// scheduled. Dependents are published from their snapshot version.
//
// The trail is returned even on error and holds the packages published
// before the failure.
func (o *Orchestrator) Run(ctx context.Context, changed []workspace.ChangedPackage) (*Trail, error) {
	trail := NewTrail()

	scheduled := make(map[string]struct{}, len(changed))
	for _, entry := range changed {
		scheduled[entry.Name] = struct{}{}
	}

	for _, entry := range changed {
		if err := ctx.Err(); err != nil {
			return trail, err
		}

		if o.blacklisted(entry.Name) {
			o.logger.Debug("blacklisted package skipped", zap.String("package", entry.Name))
			trail.addSkip(Skip{Name: entry.Name})
			continue
		}

		rec, err := o.publisher.publish(ctx, trail, entry.PackageInfo, false)
		if err != nil {
			return trail, err
		}

		if !o.cascade {
			continue
		}

		for _, dep := range entry.Dependents {
			if err := ctx.Err(); err != nil {
				return trail, err
			}

			if o.blacklisted(dep.Name) {
				o.logger.Debug("blacklisted dependent skipped",
					zap.String("package", dep.Name),
					zap.String("dependency", entry.Name),
				)
				trail.addSkip(Skip{Name: dep.Name, DependentOf: entry.Name})
				continue
			}

			if err := o.editor.SetDependencyVersion(ctx, dep.Path, entry.Name, rec.NewVersion); err != nil {
				return trail, &core.ReleaseError{Op: "rewrite dependency " + entry.Name, Package: dep.Name, Path: dep.Path, Err: err}
			}
			trail.addRewrite(DependencyRewrite{
				Package:    dep.Name,
				Path:       dep.Path,
				Dependency: entry.Name,
				Version:    rec.NewVersion,
			})

			if _, done := scheduled[dep.Name]; done {
				continue
			}

			if _, err := o.publisher.publish(ctx, trail, dep, true); err != nil {
				return trail, err
			}
			scheduled[dep.Name] = struct{}{}
		}
	}

	return trail, nil
}

func (o *Orchestrator) blacklisted(name string) bool {
	_, ok := o.blacklist[name]
	return ok
}
