//go:build unix

package main

import "github.com/charmbracelet/lipgloss"

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// prompt renders the REPL prompt, honoring --no-color.
func prompt() string {
	if noColor {
		return "mush> "
	}
	return promptStyle.Render("mush>") + " "
}

// errorLine renders an error message, honoring --no-color.
func errorLine(msg string) string {
	if noColor {
		return msg
	}
	return errorStyle.Render(msg)
}
