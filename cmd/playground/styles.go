package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	promptJSStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	promptTSStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// renderResponse styles formatted run text by status. Successful output is
// left plain so it can be piped.
func renderResponse(resp engine.Response) string {
	switch resp.Status {
	case engine.StatusFault:
		return errorStyle.Render(resp.Text)
	case engine.StatusDependencyMissing:
		return warnStyle.Render(resp.Text)
	default:
		return resp.Text
	}
}
