package ui

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
)

// GetFangScheme returns the same light/dark-aware color scheme fang uses.
func GetFangScheme() fang.ColorScheme {
	// This mirrors fang.mustColorscheme(DefaultColorScheme)
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	return fang.DefaultColorScheme(lipgloss.LightDark(isDark))
}

// ErrorPrefix renders the red, bold "error:" marker that leads every
// launcher error line.
func ErrorPrefix() string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Red).Render("error:")
}

// GetUsageStyles returns the styles for the program name and the quoted
// command in the one-line usage text.
func GetUsageStyles() (lipgloss.Style, lipgloss.Style) {
	colorScheme := GetFangScheme()

	programStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorScheme.Program)

	commandStyle := lipgloss.NewStyle().
		Foreground(colorScheme.QuotedString)
	return programStyle, commandStyle
}
