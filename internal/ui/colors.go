package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Semantic colors for status indication, kept to the basic ANSI range
// for terminal compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// IsTTY reports whether stdout is a terminal. Piped output gets the
// plain rendering path.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ColorEnabled reports whether styled output should be produced:
// stdout must be a terminal and the environment must advertise at
// least basic ANSI color support.
func ColorEnabled() bool {
	if !IsTTY() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// StatusStyle returns the style for a host row: green for a collected
// value, red for a failed host.
func StatusStyle(failed bool) lipgloss.Style {
	if failed {
		return lipgloss.NewStyle().Foreground(ColorError)
	}
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}
