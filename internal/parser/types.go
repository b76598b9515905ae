package parser

import (
	"path/filepath"
	"strings"
)

// Format represents the supported list file formats.
type Format string

const (
	// FormatJSON is for JSON documents (lerna changed --json output, etc.).
	FormatJSON Format = "json"

	// FormatYAML is for YAML documents.
	FormatYAML Format = "yaml"

	// FormatTOML is for TOML documents; the list must live under a field.
	FormatTOML Format = "toml"

	// FormatRaw is for plain text with one package name per line.
	FormatRaw Format = "raw"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatRaw:
		return true
	default:
		return false
	}
}

// ParseFormat converts a string to a Format, returning FormatRaw as fallback.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(s))
	if f.IsValid() {
		return f
	}
	return FormatRaw
}

// FormatForFile detects the format from the file extension.
func FormatForFile(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatRaw
	}
}

// FileConfig describes how to read a package list from a file.
type FileConfig struct {
	// Path is the file path (absolute or relative).
	Path string

	// Format specifies the file format. Empty means detect from Path.
	Format Format

	// Field is the dot-notation path to the list (for JSON/YAML/TOML).
	// Example: "packages", "release.changed"
	Field string
}
