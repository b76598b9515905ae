// Package workspace builds the package index of a monorepo: every package
// matched by the workspace globs, keyed by name, with its reverse
// dependencies. The index is a snapshot taken before a release run mutates
// any manifest.
package workspace
