package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette groups the [lipgloss.Style] values used across the renderers:
// headers, reconciled/unreported markers, failures, and footer hints.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = &Palette{
	title: bold("#7D56F4").MarginBottom(1),
	ok:    bold("#04B575"),
	err:   bold("#FF5F5F"),
	warn:  fg("#FFA500"),
	help:  fg("#626262").Italic(true),
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
