package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/manifest"
)

// DefaultPatterns are the workspace globs used when none are configured.
var DefaultPatterns = []string{"packages/*"}

// skipDirs are never descended into while expanding globs.
var skipDirs = []string{"node_modules", ".git", "vendor", "dist", "build"}

// LoaderOptions configure package discovery.
type LoaderOptions struct {
	// Root is the repository root the patterns are relative to.
	Root string
	// Patterns are slash-separated globs of package directories.
	// A "**" segment matches any number of directories.
	Patterns []string
	// Exclude holds directory name globs skipped during expansion.
	Exclude []string
	// ManifestFile is the manifest name inside each package directory.
	ManifestFile string
}

// Loader discovers workspace packages and builds the Index.
type Loader struct {
	fs     core.FileSystem
	opts   LoaderOptions
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(fs core.FileSystem, opts LoaderOptions, logger *zap.Logger) *Loader {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	if opts.ManifestFile == "" {
		opts.ManifestFile = manifest.DefaultFileName
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fs: fs, opts: opts, logger: logger}
}

// Load expands every pattern, reads the manifests found and builds the Index.
func (l *Loader) Load(ctx context.Context) (*Index, error) {
	dirs, err := l.PackageDirs(ctx)
	if err != nil {
		return nil, err
	}

	pkgs := make([]Package, 0, len(dirs))
	for _, dir := range dirs {
		m, err := manifest.Load(ctx, l.fs, manifest.PathIn(dir, l.opts.ManifestFile))
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, Package{
			PackageInfo:  PackageInfo{Name: m.Name, Version: m.Version, Path: dir},
			Dependencies: m.Dependencies,
		})
	}

	idx, err := NewIndex(pkgs)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("index built",
		zap.Int("packages", idx.Len()),
		zap.Strings("patterns", l.opts.Patterns),
	)
	return idx, nil
}

// PackageDirs returns the sorted, de-duplicated package directories that
// match the patterns and contain a manifest.
func (l *Loader) PackageDirs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string

	for _, pattern := range l.opts.Patterns {
		pattern = strings.Trim(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: invalid workspace pattern %q: %w", core.ErrConfiguration, pattern, err)
		}

		matches, err := l.expand(ctx, l.opts.Root, strings.Split(pattern, "/"))
		if err != nil {
			return nil, err
		}
		for _, dir := range matches {
			if _, dup := seen[dir]; dup {
				continue
			}
			seen[dir] = struct{}{}
			if l.hasManifest(ctx, dir) {
				dirs = append(dirs, dir)
			}
		}
	}

	slices.Sort(dirs)
	return dirs, nil
}

func (l *Loader) expand(ctx context.Context, dir string, segments []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return []string{dir}, nil
	}

	seg, rest := segments[0], segments[1:]

	if seg == "**" {
		matches, err := l.expand(ctx, dir, rest)
		if err != nil {
			return nil, err
		}
		children, err := l.subdirs(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			deeper, err := l.expand(ctx, filepath.Join(dir, child), segments)
			if err != nil {
				return nil, err
			}
			matches = append(matches, deeper...)
		}
		return matches, nil
	}

	if !hasMeta(seg) {
		return l.expand(ctx, filepath.Join(dir, seg), rest)
	}

	children, err := l.subdirs(ctx, dir)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, child := range children {
		if ok, _ := filepath.Match(seg, child); !ok {
			continue
		}
		deeper, err := l.expand(ctx, filepath.Join(dir, child), rest)
		if err != nil {
			return nil, err
		}
		matches = append(matches, deeper...)
	}
	return matches, nil
}

// subdirs lists the non-excluded child directories of dir. A missing
// directory has no children.
func (l *Loader) subdirs(ctx context.Context, dir string) ([]string, error) {
	entries, err := l.fs.ReadDir(ctx, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("read workspace directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !l.shouldExclude(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (l *Loader) shouldExclude(name string) bool {
	if strings.HasPrefix(name, ".") || slices.Contains(skipDirs, name) {
		return true
	}
	for _, pattern := range l.opts.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (l *Loader) hasManifest(ctx context.Context, dir string) bool {
	info, err := l.fs.Stat(ctx, manifest.PathIn(dir, l.opts.ManifestFile))
	return err == nil && !info.IsDir()
}

func hasMeta(seg string) bool {
	return strings.ContainsAny(seg, `*?[\`)
}
