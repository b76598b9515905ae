package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette used by the monopub prompts.
var (
	accent       = lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#fb923c"}
	accentMuted  = lipgloss.AdaptiveColor{Light: "#9a3412", Dark: "#fdba74"}
	textStrong   = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f9fafb"}
	textMuted    = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	borderNormal = lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#374151"}
	buttonText   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#111827"}
	buttonBlur   = lipgloss.AdaptiveColor{Light: "#e5e7eb", Dark: "#1f2937"}
)

// theme returns the huh theme shared by every prompt.
func theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent)
	t.Focused.Title = t.Focused.Title.Foreground(textStrong).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(textMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(buttonText).
		Background(accent).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(textMuted).
		Background(buttonBlur).
		Padding(0, 1)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderForeground(borderNormal)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(accentMuted)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(textMuted)
	return t
}
