package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if
// truncated. Escape sequences and wide characters are measured correctly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// contentWidth is the usable width inside a bordered, padded box.
func contentWidth(width int) int {
	if width <= 0 {
		return 76
	}
	return max(width-4, 20)
}
