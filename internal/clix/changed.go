package clix

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/parser"
)

// ChangedNames returns the changed package names given with --changed
// followed by those read from --changed-file. An unknown --changed-format
// reads the file as raw lines.
func ChangedNames(ctx context.Context, fs core.FileSystem, cmd *cli.Command) ([]string, error) {
	names := slices.Clone(cmd.StringSlice("changed"))

	file := cmd.String("changed-file")
	if file == "" {
		for _, flag := range []string{"changed-field", "changed-format"} {
			if cmd.String(flag) != "" {
				return nil, fmt.Errorf("%w: --%s requires --changed-file", core.ErrConfiguration, flag)
			}
		}
		return names, nil
	}

	var format parser.Format
	if f := cmd.String("changed-format"); f != "" {
		format = parser.ParseFormat(f)
	}

	listed, err := parser.NewReader(fs).ReadList(ctx, parser.FileConfig{
		Path:   file,
		Format: format,
		Field:  cmd.String("changed-field"),
	})
	if err != nil {
		return nil, err
	}
	return append(names, listed...), nil
}
