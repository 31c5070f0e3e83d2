// Package output holds the CLI's terminal formatting helpers.
package output

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Success prints a confirmation line to stdout.
func Success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Error prints an error line to stderr.
func Error(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line to stderr.
func Warn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("! "+fmt.Sprintf(format, args...)))
}

// Muted prints a secondary line to stdout.
func Muted(format string, args ...any) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}
