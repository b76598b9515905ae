package manifest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
)

// Strategy selects how manifest fields are located and rewritten.
type Strategy string

const (
	// StrategyStructured locates fields with gjson and rewrites them with
	// sjson; every other byte of the document is preserved.
	StrategyStructured Strategy = "structured"

	// StrategyPattern rewrites the first textual `"<field>": "<value>"`
	// occurrence in the document.
	StrategyPattern Strategy = "pattern"
)

// IsValid returns true if the strategy is known.
func (s Strategy) IsValid() bool {
	return s == StrategyStructured || s == StrategyPattern
}

// Options configure an Editor.
type Options struct {
	// FileName is the manifest file inside a package directory.
	FileName string
	// Strategy defaults to StrategyStructured.
	Strategy Strategy
	// PreserveRange keeps dependency range prefixes such as "^" or "workspace:".
	PreserveRange bool
}

// Editor performs scoped read-modify-write edits of package manifests.
type Editor struct {
	fs     core.FileSystem
	opts   Options
	logger *zap.Logger
}

// NewEditor creates an Editor over fs.
func NewEditor(fs core.FileSystem, opts Options, logger *zap.Logger) *Editor {
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyStructured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{fs: fs, opts: opts, logger: logger}
}

// ManifestPath returns the manifest path for a package directory.
func (e *Editor) ManifestPath(dir string) string {
	return PathIn(dir, e.opts.FileName)
}

// SetOwnVersion rewrites the top-level version field of the manifest in dir.
func (e *Editor) SetOwnVersion(ctx context.Context, dir, version string) error {
	return e.edit(ctx, dir, "version", func(path string, data []byte) ([]byte, error) {
		if e.opts.Strategy == StrategyPattern {
			return replaceFirst(data, fieldPattern("version"), func(string) string { return version }, path, "version")
		}
		if !gjson.GetBytes(data, "version").Exists() {
			return nil, missingField(path, "version")
		}
		return sjson.SetBytes(data, "version", version)
	})
}

// SetDependencyVersion rewrites the specifier of dependency name in the
// manifest in dir to version.
func (e *Editor) SetDependencyVersion(ctx context.Context, dir, name, version string) error {
	return e.edit(ctx, dir, name, func(path string, data []byte) ([]byte, error) {
		rewrite := func(current string) string {
			return rewriteSpecifier(current, version, e.opts.PreserveRange)
		}
		if e.opts.Strategy == StrategyPattern {
			return replaceFirst(data, fieldPattern(name), rewrite, path, name)
		}

		section, current, ok := findDependency(data, name)
		if !ok {
			return nil, missingField(path, name)
		}
		next := rewrite(current)
		if next == current {
			return data, nil
		}
		return sjson.SetBytes(data, section+"."+escapePathKey(name), next)
	})
}

func (e *Editor) edit(ctx context.Context, dir, field string, apply func(path string, data []byte) ([]byte, error)) error {
	path := e.ManifestPath(dir)

	data, err := e.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", core.ErrManifestParse, path, err)
	}

	if e.opts.Strategy == StrategyStructured && !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s: invalid JSON", core.ErrManifestParse, path)
	}

	updated, err := apply(path, data)
	if err != nil {
		return err
	}
	if string(updated) == string(data) {
		e.logger.Debug("manifest unchanged", zap.String("path", path), zap.String("field", field))
		return nil
	}

	perm := core.PermPublicRead
	if info, statErr := e.fs.Stat(ctx, path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := e.fs.WriteFile(ctx, path, updated, perm); err != nil {
		return fmt.Errorf("%w: write %s: %w", core.ErrExternalOperation, path, err)
	}

	e.logger.Debug("manifest rewritten", zap.String("path", path), zap.String("field", field))
	return nil
}

// findDependency returns the first dependency section, in document order,
// that declares name, together with the declared specifier.
func findDependency(data []byte, name string) (section, specifier string, found bool) {
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		if !isDependencySection(key.String()) || !value.IsObject() {
			return true
		}
		value.ForEach(func(dep, declared gjson.Result) bool {
			if dep.String() == name {
				section, specifier, found = key.String(), declared.String(), true
				return false
			}
			return true
		})
		return !found
	})
	return section, specifier, found
}

// escapePathKey escapes characters that gjson and sjson treat as path syntax,
// so scoped names like "@scope/pkg" address a single key.
func escapePathKey(key string) string {
	var sb strings.Builder
	sb.Grow(len(key) + 2)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !isSafePathKeyChar(c) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isSafePathKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c <= ' ' || c > '~' ||
		c == '_' || c == '-' || c == ':'
}

func fieldPattern(field string) *regexp.Regexp {
	return regexp.MustCompile(`("` + regexp.QuoteMeta(field) + `"\s*:\s*")([^"]*)(")`)
}

// replaceFirst rewrites the value captured by the first match of re.
func replaceFirst(data []byte, re *regexp.Regexp, rewrite func(current string) string, path, field string) ([]byte, error) {
	loc := re.FindSubmatchIndex(data)
	if loc == nil {
		return nil, missingField(path, field)
	}

	valueStart, valueEnd := loc[4], loc[5]
	next := rewrite(string(data[valueStart:valueEnd]))

	out := make([]byte, 0, len(data)-(valueEnd-valueStart)+len(next))
	out = append(out, data[:valueStart]...)
	out = append(out, next...)
	out = append(out, data[valueEnd:]...)
	return out, nil
}

func missingField(path, field string) error {
	return fmt.Errorf("%w: %s: field %q not found", core.ErrManifestParse, path, field)
}
