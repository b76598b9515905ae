// Package version reports the monopub build version.
package version

import (
	"runtime/debug"
	"strings"
)

// version is set at build time with -ldflags "-X .../internal/version.version=x.y.z".
var version = ""

// GetVersion returns the build version, falling back to the module version
// recorded by the Go toolchain, then "dev".
func GetVersion() string {
	if version != "" {
		return strings.TrimPrefix(version, "v")
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v")
		}
	}
	return "dev"
}
