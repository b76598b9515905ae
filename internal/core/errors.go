package core

import (
	"errors"
	"strings"
)

// Error categories surfaced by a release run. Every failure reported by the
// release components matches exactly one of them with errors.Is.
var (
	// ErrConfiguration reports an unusable configuration or input set
	// (unknown bump step, unknown package, duplicate package names).
	ErrConfiguration = errors.New("configuration error")

	// ErrManifestParse reports a manifest that could not be read or that
	// lacks the field being rewritten.
	ErrManifestParse = errors.New("manifest parse error")

	// ErrExternalOperation reports a failed registry publish, commit, push
	// or revision lookup.
	ErrExternalOperation = errors.New("external operation failed")

	// ErrVersionFormat reports a version string that is not a numeric triple.
	ErrVersionFormat = errors.New("invalid version format")
)

// ReleaseError describes the package, path and operation that stopped a
// release run.
type ReleaseError struct {
	Op      string
	Package string
	Path    string
	Err     error
}

func (e *ReleaseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Package != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Package)
	}
	if e.Path != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Path)
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// AsReleaseError returns the first ReleaseError in err's chain.
func AsReleaseError(err error) (*ReleaseError, bool) {
	var re *ReleaseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
