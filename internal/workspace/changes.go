package workspace

import (
	"fmt"
	"strings"

	"github.com/indaco/monopub/internal/core"
)

// ChangedPackage is a package reported as changed together with the
// packages that depend on it, both taken from the index snapshot.
type ChangedPackage struct {
	PackageInfo
	Dependents []PackageInfo
}

// ResolveChanged turns changed package names into ChangedPackage entries,
// keeping the input order. Repeated names keep their first occurrence;
// names missing from the index are a configuration error.
func ResolveChanged(idx *Index, names []string) ([]ChangedPackage, error) {
	seen := make(map[string]struct{}, len(names))
	changed := make([]ChangedPackage, 0, len(names))
	var unknown []string

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		info, ok := idx.Find(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		changed = append(changed, ChangedPackage{
			PackageInfo: info,
			Dependents:  idx.Dependents(name),
		})
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown packages: %s", core.ErrConfiguration, strings.Join(unknown, ", "))
	}
	return changed, nil
}
