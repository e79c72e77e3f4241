package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/exr/xerr"
)

var (
	diagReasonStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	diagSiteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	diagCaretStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

// renderDiagnostic colorizes an xerr.Diagnostic's rendered text: the
// reason in bold red, the source/position line dimmed, and the caret
// marker in bold green.
func renderDiagnostic(d xerr.Diagnostic) string {
	lines := strings.SplitAfter(d.String(), "\n")
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(diagReasonStyle.Render(strings.TrimSuffix(lines[0], "\n")))
	b.WriteString("\n")

	for _, line := range lines[1:] {
		trimmed := strings.TrimRight(line, "\n")

		switch {
		case strings.TrimSpace(trimmed) == "^" || strings.HasSuffix(trimmed, "^"):
			b.WriteString(diagCaretStyle.Render(trimmed))
		case trimmed != "":
			b.WriteString(diagSiteStyle.Render(trimmed))
		default:
			b.WriteString(trimmed)
		}

		b.WriteString("\n")
	}

	return b.String()
}
