package tui

import (
	"context"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs fn behind a spinner titled title when the session is
// interactive, and calls fn directly otherwise.
func RunWithSpinner(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	if !IsInteractive() {
		return fn(ctx)
	}

	var actionErr error
	err := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() { actionErr = fn(ctx) }).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
