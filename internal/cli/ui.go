package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Shared lipgloss styles for terminal output.
var (
	// StyleDim renders secondary text (spinner messages, hints).
	StyleDim = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// StyleBold renders emphasized text (headings, element names).
	StyleBold = lipgloss.NewStyle().Bold(true)

	styleIconSpinner = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	styleIconSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleIconError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// printSuccess writes a green check mark line to stderr.
func printSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", styleIconSuccess.Render("✓"), fmt.Sprintf(format, args...))
}

// printError writes a red cross line to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", styleIconError.Render("✗"), fmt.Sprintf(format, args...))
}
