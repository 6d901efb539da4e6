package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault      ThemeName = "default"       // Violet on dark
	ThemeHighContrast ThemeName = "high-contrast" // Pure colors for projectors and low vision
	ThemeClassroom    ThemeName = "classroom"     // Soft palette for light terminals
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeHighContrast),
		string(ThemeClassroom),
	}
}

// IsBuiltinTheme reports whether name is a built-in theme.
func IsBuiltinTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color

	// Sides of a debate
	Pro lipgloss.Color
	Con lipgloss.Color
	AI  lipgloss.Color
}

// DefaultPalette returns the default dark palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // violet-400
		Secondary: lipgloss.Color("#10B981"), // emerald-500
		Warning:   lipgloss.Color("#F59E0B"), // amber-500
		Error:     lipgloss.Color("#F87171"), // red-400
		Muted:     lipgloss.Color("#9CA3AF"), // gray-400
		Surface:   lipgloss.Color("#1F2937"), // gray-800
		Text:      lipgloss.Color("#F9FAFB"), // gray-50
		Border:    lipgloss.Color("#6B7280"), // gray-500

		Pro: lipgloss.Color("#34D399"), // emerald-400
		Con: lipgloss.Color("#FB7185"), // rose-400
		AI:  lipgloss.Color("#60A5FA"), // blue-400
	}
}

// HighContrastPalette returns a palette with maximum contrast on black.
func HighContrastPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FFFF00"),
		Secondary: lipgloss.Color("#00FF00"),
		Warning:   lipgloss.Color("#FFA500"),
		Error:     lipgloss.Color("#FF0000"),
		Muted:     lipgloss.Color("#C0C0C0"),
		Surface:   lipgloss.Color("#000000"),
		Text:      lipgloss.Color("#FFFFFF"),
		Border:    lipgloss.Color("#FFFFFF"),

		Pro: lipgloss.Color("#00FF00"),
		Con: lipgloss.Color("#FF00FF"),
		AI:  lipgloss.Color("#00FFFF"),
	}
}

// ClassroomPalette returns a palette readable on light terminals.
func ClassroomPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#1D4ED8"), // blue-700
		Secondary: lipgloss.Color("#047857"), // emerald-700
		Warning:   lipgloss.Color("#B45309"), // amber-700
		Error:     lipgloss.Color("#B91C1C"), // red-700
		Muted:     lipgloss.Color("#4B5563"), // gray-600
		Surface:   lipgloss.Color("#F3F4F6"), // gray-100
		Text:      lipgloss.Color("#111827"), // gray-900
		Border:    lipgloss.Color("#9CA3AF"), // gray-400

		Pro: lipgloss.Color("#15803D"), // green-700
		Con: lipgloss.Color("#BE123C"), // rose-700
		AI:  lipgloss.Color("#6D28D9"), // violet-700
	}
}

// GetPalette returns the palette for a built-in theme, or the default
// palette for unknown names.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeHighContrast:
		return HighContrastPalette()
	case ThemeClassroom:
		return ClassroomPalette()
	default:
		return DefaultPalette()
	}
}
