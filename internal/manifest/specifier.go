package manifest

import (
	"regexp"

	"github.com/indaco/monopub/internal/semver"
)

// rangePrefixRegex splits a dependency specifier into its range prefix and
// the version it constrains ("workspace:^1.2.3" -> "workspace:^", "1.2.3").
var rangePrefixRegex = regexp.MustCompile(`^((?:workspace:)?(?:\^|~|>=|<=|>|<|=)?)(.*)$`)

// rewriteSpecifier returns the specifier to write for version. Without
// preserveRange the bare version replaces the specifier. With it the range
// prefix is kept, and specifiers that carry no version ("*",
// "workspace:*", "latest") are returned unchanged.
func rewriteSpecifier(current, version string, preserveRange bool) string {
	if !preserveRange {
		return version
	}
	m := rangePrefixRegex.FindStringSubmatch(current)
	if m == nil {
		return current
	}
	if _, err := semver.ParseVersion(m[2]); err != nil {
		return current
	}
	return m[1] + version
}
