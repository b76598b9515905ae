package workspace

import (
	"fmt"
	"slices"
	"strings"

	"github.com/indaco/monopub/internal/core"
)

// PackageInfo is the snapshot of one package taken at the start of a run.
type PackageInfo struct {
	Name    string
	Version string
	// Path is the package directory containing the manifest.
	Path string
}

// Package is a PackageInfo plus the names it declares as dependencies.
type Package struct {
	PackageInfo
	Dependencies []string
}

// Index maps package names to their snapshot and reverse dependencies.
// It is read-only once built.
type Index struct {
	packages   []Package
	byName     map[string]int
	dependents map[string][]PackageInfo
}

// NewIndex builds an Index. Packages are ordered by path so that
// dependents are reported in a reproducible order. Two packages with the
// same name are a configuration error.
func NewIndex(pkgs []Package) (*Index, error) {
	sorted := slices.Clone(pkgs)
	slices.SortStableFunc(sorted, func(a, b Package) int {
		return strings.Compare(a.Path, b.Path)
	})

	idx := &Index{
		packages:   sorted,
		byName:     make(map[string]int, len(sorted)),
		dependents: make(map[string][]PackageInfo),
	}

	for i, p := range sorted {
		if prev, dup := idx.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate package name %q in %s and %s",
				core.ErrConfiguration, p.Name, sorted[prev].Path, p.Path)
		}
		idx.byName[p.Name] = i
	}

	for _, p := range sorted {
		for _, dep := range p.Dependencies {
			if dep == p.Name {
				continue
			}
			if _, internal := idx.byName[dep]; internal {
				idx.dependents[dep] = append(idx.dependents[dep], p.PackageInfo)
			}
		}
	}

	return idx, nil
}

// Find returns the package named name.
func (idx *Index) Find(name string) (PackageInfo, bool) {
	i, ok := idx.byName[name]
	if !ok {
		return PackageInfo{}, false
	}
	return idx.packages[i].PackageInfo, true
}

// Dependents returns the packages declaring name as a dependency, in index order.
func (idx *Index) Dependents(name string) []PackageInfo {
	return slices.Clone(idx.dependents[name])
}

// Dependencies returns the workspace packages that name depends on.
func (idx *Index) Dependencies(name string) []string {
	i, ok := idx.byName[name]
	if !ok {
		return nil
	}
	var deps []string
	for _, dep := range idx.packages[i].Dependencies {
		if _, internal := idx.byName[dep]; internal && dep != name {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Packages returns every indexed package in index order.
func (idx *Index) Packages() []PackageInfo {
	out := make([]PackageInfo, len(idx.packages))
	for i, p := range idx.packages {
		out[i] = p.PackageInfo
	}
	return out
}

// Len returns the number of indexed packages.
func (idx *Index) Len() int {
	return len(idx.packages)
}
