package release

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/workspace"
)

// ErrAlreadyPublished is returned when a package is published twice in one run.
var ErrAlreadyPublished = errors.New("package already published in this run")

// Versioner computes the version following current.
type Versioner interface {
	Next(ctx context.Context, current string) (string, error)
}

// ManifestEditor rewrites version fields of the manifest in a package directory.
type ManifestEditor interface {
	SetOwnVersion(ctx context.Context, dir, version string) error
	SetDependencyVersion(ctx context.Context, dir, dependency, version string) error
}

// Registry publishes a package directory at a version.
type Registry interface {
	Publish(ctx context.Context, pkg workspace.PackageInfo, version string) error
}

// Publisher publishes a single package and records it in the trail.
type Publisher struct {
	versions Versioner
	editor   ManifestEditor
	registry Registry
	logger   *zap.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(versions Versioner, editor ManifestEditor, registry Registry, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{versions: versions, editor: editor, registry: registry, logger: logger}
}

// Publish computes the next version of pkg, writes it to the package
// manifest, publishes the package and appends the record to trail.
// The record is appended only once the registry publish succeeded.
func (p *Publisher) Publish(ctx context.Context, trail *Trail, pkg workspace.PackageInfo) (PublishedPackage, error) {
	return p.publish(ctx, trail, pkg, false)
}

func (p *Publisher) publish(ctx context.Context, trail *Trail, pkg workspace.PackageInfo, cascade bool) (PublishedPackage, error) {
	fail := func(op string, err error) (PublishedPackage, error) {
		return PublishedPackage{}, &core.ReleaseError{Op: op, Package: pkg.Name, Path: pkg.Path, Err: err}
	}

	if trail.Has(pkg.Name) {
		return fail("publish", ErrAlreadyPublished)
	}

	next, err := p.versions.Next(ctx, pkg.Version)
	if err != nil {
		return fail("compute version", err)
	}

	if err := p.editor.SetOwnVersion(ctx, pkg.Path, next); err != nil {
		return fail("set version", err)
	}

	p.logger.Debug("publish invoked",
		zap.String("package", pkg.Name),
		zap.String("version", next),
		zap.String("path", pkg.Path),
		zap.Bool("cascade", cascade),
	)
	if err := p.registry.Publish(ctx, pkg, next); err != nil {
		if !errors.Is(err, core.ErrExternalOperation) {
			err = fmt.Errorf("%w: %w", core.ErrExternalOperation, err)
		}
		return fail("publish", err)
	}

	rec := PublishedPackage{
		Name:            pkg.Name,
		PreviousVersion: pkg.Version,
		NewVersion:      next,
		Path:            pkg.Path,
		Cascade:         cascade,
	}
	trail.append(rec)
	return rec, nil
}
