// Package manifest reads package manifests (package.json-shaped JSON) and
// rewrites their version fields in place.
package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/indaco/monopub/internal/core"
)

// DefaultFileName is the manifest file looked up in every package directory.
const DefaultFileName = "package.json"

// DependencySections lists the manifest objects that declare dependencies.
var DependencySections = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

// Manifest is the subset of a package manifest monopub needs.
type Manifest struct {
	Name    string
	Version string
	// Dependencies holds the names declared in any dependency section,
	// in document order, without duplicates.
	Dependencies []string
}

// Load reads and decodes the manifest at path.
func Load(ctx context.Context, fs core.FileSystem, path string) (*Manifest, error) {
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrManifestParse, path, err)
	}
	return Parse(path, data)
}

// Parse decodes manifest data; path is used in error messages only.
func Parse(path string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", core.ErrManifestParse, path)
	}

	name := gjson.GetBytes(data, "name")
	if name.Type != gjson.String || name.String() == "" {
		return nil, fmt.Errorf("%w: %s: field %q not found", core.ErrManifestParse, path, "name")
	}

	m := &Manifest{
		Name:    name.String(),
		Version: gjson.GetBytes(data, "version").String(),
	}

	seen := make(map[string]struct{})
	gjson.ParseBytes(data).ForEach(func(key, section gjson.Result) bool {
		if !isDependencySection(key.String()) || !section.IsObject() {
			return true
		}
		section.ForEach(func(dep, _ gjson.Result) bool {
			if _, dup := seen[dep.String()]; !dup {
				seen[dep.String()] = struct{}{}
				m.Dependencies = append(m.Dependencies, dep.String())
			}
			return true
		})
		return true
	})

	return m, nil
}

// PathIn returns the manifest path inside a package directory.
func PathIn(dir, fileName string) string {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return filepath.Join(dir, fileName)
}

func isDependencySection(key string) bool {
	for _, s := range DependencySections {
		if s == key {
			return true
		}
	}
	return false
}
