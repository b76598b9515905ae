package tui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Confirm shows a yes/no prompt. Aborting the prompt (ctrl+c, esc) counts
// as "no".
func Confirm(title, description string) (bool, error) {
	confirmed := false
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	err := huh.NewForm(huh.NewGroup(field)).WithTheme(theme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
