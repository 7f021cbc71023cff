package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Shared output styles. Lipgloss degrades to plain text when stdout is not a
// terminal, so these are safe to use unconditionally.
var (
	StyleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	StyleSuccess = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	StyleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	StyleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Successf prints a green check line.
func Successf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", StyleSuccess.Render("✓"), fmt.Sprintf(format, args...))
}

// Warnf prints a yellow warning line.
func Warnf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", StyleWarning.Render("!"), fmt.Sprintf(format, args...))
}

// Headingf prints a bold section heading.
func Headingf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s\n", StyleHeading.Render(fmt.Sprintf(format, args...)))
}
