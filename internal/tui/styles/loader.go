package styles

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ThemeFile represents a custom theme definition loaded from YAML.
type ThemeFile struct {
	Name        string      `yaml:"name"`
	Author      string      `yaml:"author,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Version     string      `yaml:"version"`
	Colors      ThemeColors `yaml:"colors"`
}

// ThemeColors contains all color definitions for a theme.
// All colors should be hex format (#RRGGBB or #RGB).
type ThemeColors struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Warning   string `yaml:"warning"`
	Error     string `yaml:"error"`
	Muted     string `yaml:"muted"`
	Surface   string `yaml:"surface"`
	Text      string `yaml:"text"`
	Border    string `yaml:"border"`

	// Optional; default to secondary, error and primary
	Pro string `yaml:"pro,omitempty"`
	Con string `yaml:"con,omitempty"`
	AI  string `yaml:"ai,omitempty"`
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

func isValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// IsThemeFile reports whether a theme setting names a YAML file rather than
// a built-in theme.
func IsThemeFile(theme string) bool {
	ext := strings.ToLower(filepath.Ext(theme))
	return ext == ".yaml" || ext == ".yml"
}

// LoadThemeFile loads a theme from a YAML file on fs.
func LoadThemeFile(fs afero.Fs, path string) (*ThemeFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	return &theme, nil
}

// Validate checks that the theme file is well-formed.
func (t *ThemeFile) Validate() error {
	if t.Name == "" {
		return errors.New("theme name is required")
	}
	if t.Version != "1" {
		return fmt.Errorf("unsupported theme version: %q (supported: 1)", t.Version)
	}

	required := []struct{ name, value string }{
		{"primary", t.Colors.Primary},
		{"secondary", t.Colors.Secondary},
		{"warning", t.Colors.Warning},
		{"error", t.Colors.Error},
		{"muted", t.Colors.Muted},
		{"surface", t.Colors.Surface},
		{"text", t.Colors.Text},
		{"border", t.Colors.Border},
	}
	for _, c := range required {
		if c.value == "" {
			return fmt.Errorf("color '%s' is required", c.name)
		}
		if !isValidHexColor(c.value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", c.name, c.value)
		}
	}

	optional := []struct{ name, value string }{
		{"pro", t.Colors.Pro},
		{"con", t.Colors.Con},
		{"ai", t.Colors.AI},
	}
	for _, c := range optional {
		if c.value != "" && !isValidHexColor(c.value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", c.name, c.value)
		}
	}
	return nil
}

// ToPalette converts the theme file to a ColorPalette.
func (t *ThemeFile) ToPalette() *ColorPalette {
	c := t.Colors
	return &ColorPalette{
		Primary:   lipgloss.Color(c.Primary),
		Secondary: lipgloss.Color(c.Secondary),
		Warning:   lipgloss.Color(c.Warning),
		Error:     lipgloss.Color(c.Error),
		Muted:     lipgloss.Color(c.Muted),
		Surface:   lipgloss.Color(c.Surface),
		Text:      lipgloss.Color(c.Text),
		Border:    lipgloss.Color(c.Border),
		Pro:       colorOrDefault(c.Pro, c.Secondary),
		Con:       colorOrDefault(c.Con, c.Error),
		AI:        colorOrDefault(c.AI, c.Primary),
	}
}

func colorOrDefault(color, fallback string) lipgloss.Color {
	if color == "" {
		return lipgloss.Color(fallback)
	}
	return lipgloss.Color(color)
}

// ResolvePalette returns the palette for a theme setting: a built-in name or
// a path to a YAML theme file. Relative paths are resolved against dir.
func ResolvePalette(fs afero.Fs, theme, dir string) (*ColorPalette, error) {
	if !IsThemeFile(theme) {
		if theme != "" && !IsBuiltinTheme(theme) {
			return nil, fmt.Errorf("unknown theme %q", theme)
		}
		return GetPalette(ThemeName(theme)), nil
	}

	path := theme
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	tf, err := LoadThemeFile(fs, path)
	if err != nil {
		return nil, err
	}
	return tf.ToPalette(), nil
}

// ThemesDirName is the directory under the config dir that holds custom themes.
const ThemesDirName = "themes"

// ThemeFileFromPalette builds a theme file from a palette, e.g. to export a
// built-in theme as a starting point.
func ThemeFileFromPalette(name string, p *ColorPalette) *ThemeFile {
	return &ThemeFile{
		Name:    name,
		Version: "1",
		Colors: ThemeColors{
			Primary:   string(p.Primary),
			Secondary: string(p.Secondary),
			Warning:   string(p.Warning),
			Error:     string(p.Error),
			Muted:     string(p.Muted),
			Surface:   string(p.Surface),
			Text:      string(p.Text),
			Border:    string(p.Border),
			Pro:       string(p.Pro),
			Con:       string(p.Con),
			AI:        string(p.AI),
		},
	}
}

// Marshal encodes the theme as YAML.
func (t *ThemeFile) Marshal() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	return yaml.Marshal(t)
}

// SaveThemeFile writes t to path on fs, creating parent directories. An
// existing file is never overwritten.
func SaveThemeFile(fs afero.Fs, path string, t *ThemeFile) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	if exists, _ := afero.Exists(fs, path); exists {
		return fmt.Errorf("theme file already exists: %s", path)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating themes directory: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
