// Package clix holds the command-line plumbing shared by the release
// commands: common flags, changed-package input and the wiring of a release
// session from configuration.
package clix
