package clix

import (
	"fmt"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/release"
)

// Report headers.
const (
	PublishedHeader     = "published packages:"
	PartialTrailHeader  = "published before failure:"
	NothingToPublishMsg = "No changed packages, nothing to publish."
)

// PrintTrail prints header followed by the trail report, one
// "name previous => new" line per published package. An empty trail prints
// nothing.
func PrintTrail(header string, trail *release.Trail) {
	if trail == nil || trail.Len() == 0 {
		return
	}
	printer.PrintBold(header)
	fmt.Println(trail.Report())
}

// PrintRewrites lists the dependency declarations rewritten during a run.
func PrintRewrites(trail *release.Trail) {
	if trail == nil || len(trail.Rewrites()) == 0 {
		return
	}
	printer.PrintBold("dependency rewrites:")
	for _, rw := range trail.Rewrites() {
		fmt.Printf("  %s: %s => %s\n", rw.Package, rw.Dependency, rw.Version)
	}
}

// PrintSkipped lists blacklisted packages left untouched.
func PrintSkipped(trail *release.Trail) {
	if trail == nil || len(trail.Skipped()) == 0 {
		return
	}
	printer.PrintBold("skipped (blacklisted):")
	for _, s := range trail.Skipped() {
		if s.DependentOf != "" {
			fmt.Printf("  %s %s\n", s.Name, printer.Faint("(dependent of "+s.DependentOf+")"))
			continue
		}
		fmt.Printf("  %s\n", s.Name)
	}
}

// PrintFailure prints the failing operation, package and path of err in
// red, followed by the packages already published as a recovery hint.
func PrintFailure(err error, trail *release.Trail) {
	if relErr, ok := core.AsReleaseError(err); ok {
		printer.PrintError("release failed during " + relErr.Op)
		if relErr.Package != "" {
			printer.PrintError("  package: " + relErr.Package)
		}
		if relErr.Path != "" {
			printer.PrintError("  path:    " + relErr.Path)
		}
		printer.PrintError(fmt.Sprintf("  error:   %v", relErr.Err))
	} else {
		printer.PrintError(fmt.Sprintf("release failed: %v", err))
	}
	PrintTrail(PartialTrailHeader, trail)
}
