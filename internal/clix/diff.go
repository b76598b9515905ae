package clix

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/printer"
)

// LineDiff returns the lines removed from before ("-" prefix) and added in
// after ("+" prefix), in document order. Unchanged lines are omitted.
func LineDiff(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}

// PrintOverlayDiff lists every file written through overlay with the lines
// that would change on disk.
func PrintOverlayDiff(ctx context.Context, overlay *core.OverlayFileSystem) error {
	files := overlay.Changed()
	if len(files) == 0 {
		return nil
	}

	printer.PrintBold("files that would change:")
	for _, path := range files {
		fmt.Println("  " + path)

		original, err := overlay.Original(ctx, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		updated, _ := overlay.Content(path)

		for _, line := range LineDiff(string(original), string(updated)) {
			if strings.HasPrefix(line, "+") {
				fmt.Println("    " + printer.Success(line))
			} else {
				fmt.Println("    " + printer.Error(line))
			}
		}
	}
	return nil
}
