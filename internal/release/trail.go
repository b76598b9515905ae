package release

import (
	"slices"
	"strings"
)

// PublishedPackage records one package published during a run.
type PublishedPackage struct {
	Name            string
	PreviousVersion string
	NewVersion      string
	Path            string
	// Cascade is set when the package was published because a dependency was.
	Cascade bool
}

// String formats the record as "name previous => new".
func (p PublishedPackage) String() string {
	return p.Name + " " + p.PreviousVersion + " => " + p.NewVersion
}

// DependencyRewrite records a dependency specifier rewritten in a dependent's manifest.
type DependencyRewrite struct {
	Package    string
	Path       string
	Dependency string
	Version    string
}

// Skip records a package left out of the run because it is blacklisted.
type Skip struct {
	Name string
	// DependentOf names the changed package whose cascade reached it; empty
	// when the package was itself reported as changed.
	DependentOf string
}

// Trail is the append-ordered audit log of one run. A package name is
// recorded at most once.
type Trail struct {
	records  []PublishedPackage
	names    map[string]struct{}
	rewrites []DependencyRewrite
	skipped  []Skip
}

// NewTrail returns an empty trail.
func NewTrail() *Trail {
	return &Trail{names: make(map[string]struct{})}
}

// Has reports whether name was already published in this run.
func (t *Trail) Has(name string) bool {
	_, ok := t.names[name]
	return ok
}

func (t *Trail) append(rec PublishedPackage) {
	t.names[rec.Name] = struct{}{}
	t.records = append(t.records, rec)
}

func (t *Trail) addRewrite(rw DependencyRewrite) {
	t.rewrites = append(t.rewrites, rw)
}

func (t *Trail) addSkip(s Skip) {
	t.skipped = append(t.skipped, s)
}

// Records returns the published packages in publish order.
func (t *Trail) Records() []PublishedPackage {
	return slices.Clone(t.records)
}

// Rewrites returns the dependency rewrites in the order they were applied.
func (t *Trail) Rewrites() []DependencyRewrite {
	return slices.Clone(t.rewrites)
}

// Skipped returns the blacklisted packages the run left out.
func (t *Trail) Skipped() []Skip {
	return slices.Clone(t.skipped)
}

// Len returns the number of published packages.
func (t *Trail) Len() int {
	return len(t.records)
}

// Report renders one "name previous => new" line per published package.
func (t *Trail) Report() string {
	lines := make([]string, len(t.records))
	for i, rec := range t.records {
		lines[i] = rec.String()
	}
	return strings.Join(lines, "\n")
}
