package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/indaco/monopub/internal/core"
)

// Reader reads package name lists through a core.FileSystem.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// ReadList returns the package names listed in the file described by cfg,
// in file order. Structured lists may hold plain strings or objects with a
// "name" key.
func (r *Reader) ReadList(ctx context.Context, cfg FileConfig) ([]string, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: file path is required", core.ErrConfiguration)
	}

	format := cfg.Format
	if format == "" {
		format = FormatForFile(cfg.Path)
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: invalid format: %s", core.ErrConfiguration, format)
	}

	data, err := r.fs.ReadFile(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", cfg.Path, err)
	}

	var doc any
	switch format {
	case FormatRaw:
		return readRaw(data), nil
	case FormatJSON, FormatYAML:
		// goccy/go-yaml decodes JSON as a YAML subset.
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s in %q: %w", core.ErrConfiguration, format, cfg.Path, err)
		}
	case FormatTOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("%w: failed to parse TOML in %q: %w", core.ErrConfiguration, cfg.Path, err)
		}
		doc = table
	}

	if cfg.Field != "" {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q: document root is not an object", core.ErrConfiguration, cfg.Path)
		}
		doc, err = getNestedValue(obj, cfg.Field)
		if err != nil {
			return nil, fmt.Errorf("%w: in file %q: %w", core.ErrConfiguration, cfg.Path, err)
		}
	}

	names, err := toNames(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: in file %q: %w", core.ErrConfiguration, cfg.Path, err)
	}
	return names, nil
}

// readRaw splits data into trimmed lines, skipping blanks and # comments.
func readRaw(data []byte) []string {
	var names []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}

func toNames(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, strings.TrimSpace(v))
		case map[string]any:
			name, ok := v["name"].(string)
			if !ok || name == "" {
				return nil, fmt.Errorf("list item %d has no \"name\" string", i)
			}
			names = append(names, name)
		default:
			return nil, fmt.Errorf("list item %d is %T, want string", i, item)
		}
	}
	return names, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "release.packages" accesses obj["release"]["packages"]
func getNestedValue(obj map[string]any, field string) (any, error) {
	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("field %q not found", field)
		}

		current = value
	}

	return current, nil
}
