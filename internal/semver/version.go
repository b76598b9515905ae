// Package semver parses package versions and computes the next version of a
// package under a bump policy.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/indaco/monopub/internal/core"
)

// SemVersion represents a semantic version (major.minor.patch-preRelease+build).
type SemVersion struct {
	Major      int
	Minor      int
	Patch      int
	PreRelease string
	Build      string
}

// versionRegex matches semantic version strings with optional "v" prefix,
// optional pre-release (e.g., "-beta.1"), and optional build metadata (e.g., "+build.123").
// It captures:
//  1. "v" prefix
//  2. Major version
//  3. Minor version
//  4. Patch version
//  5. (optional) Pre-release identifier
//  6. (optional) Build metadata
var versionRegex = regexp.MustCompile(
	`^(v?)([^\.\-+]+)\.([^\.\-+]+)\.([^\.\-+]+)` + // major.minor.patch
		`(?:-([0-9A-Za-z\-\.]+))?` + // optional pre-release
		`(?:\+([0-9A-Za-z\-\.]+))?$`, // optional build metadata
)

// maxVersionLength is the maximum allowed length for a version string.
// This prevents potential ReDoS attacks on the regex parser.
const maxVersionLength = 128

// String returns the string representation of the semantic version.
func (v SemVersion) String() string {
	var sb strings.Builder
	sb.Grow(20)
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	if v.PreRelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.PreRelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// Release returns v without its pre-release and build suffixes.
func (v SemVersion) Release() SemVersion {
	return SemVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// ParseVersion parses a semantic version string and returns a SemVersion.
//
// Supported formats:
//   - "1.2.3" (basic version)
//   - "v1.2.3" (with optional v prefix)
//   - "1.2.3-alpha.1" (with pre-release identifier)
//   - "1.2.3+build.123" (with build metadata)
//   - "1.2.3-rc.1+build.456" (with both)
//
// Returns core.ErrVersionFormat (wrapped) when the input is too long, does not
// match the major.minor.patch shape, or has a non-numeric component.
func ParseVersion(s string) (SemVersion, error) {
	v, _, err := parse(s)
	return v, err
}

// parse is ParseVersion that also reports the "v" prefix, if any.
func parse(s string) (SemVersion, string, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > maxVersionLength {
		return SemVersion{}, "", fmt.Errorf("%w: version string exceeds maximum length of %d", core.ErrVersionFormat, maxVersionLength)
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return SemVersion{}, "", fmt.Errorf("%w: %q", core.ErrVersionFormat, s)
	}

	parts := [3]int{}
	for i, label := range []string{"major", "minor", "patch"} {
		n, err := parseComponent(matches[i+2])
		if err != nil {
			return SemVersion{}, "", fmt.Errorf("%w: invalid %s version in %q", core.ErrVersionFormat, label, s)
		}
		parts[i] = n
	}

	return SemVersion{
		Major:      parts[0],
		Minor:      parts[1],
		Patch:      parts[2],
		PreRelease: matches[5],
		Build:      matches[6],
	}, matches[1], nil
}

// parseComponent accepts base-10 digits only; strconv.Atoi alone would also
// take a leading sign.
func parseComponent(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
