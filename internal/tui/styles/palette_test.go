package styles

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/rebuttal/internal/config"
)

func TestBuiltinThemes_MatchConfig(t *testing.T) {
	if got, want := BuiltinThemes(), config.BuiltinThemes(); !slices.Equal(got, want) {
		t.Errorf("BuiltinThemes() = %v, config.BuiltinThemes() = %v", got, want)
	}
}

func TestGetPalette(t *testing.T) {
	tests := []struct {
		name ThemeName
		want *ColorPalette
	}{
		{ThemeDefault, DefaultPalette()},
		{ThemeHighContrast, HighContrastPalette()},
		{ThemeClassroom, ClassroomPalette()},
		{"unknown", DefaultPalette()},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			if got := GetPalette(tt.name); *got != *tt.want {
				t.Errorf("GetPalette(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPalettes_DistinguishSides(t *testing.T) {
	for _, name := range BuiltinThemes() {
		p := GetPalette(ThemeName(name))
		if p.Pro == p.Con {
			t.Errorf("%s: pro and con share color %v", name, p.Pro)
		}
		if p.AI == p.Pro || p.AI == p.Con {
			t.Errorf("%s: AI color %v collides with a side", name, p.AI)
		}
	}
}

func TestIsBuiltinTheme(t *testing.T) {
	if !IsBuiltinTheme("high-contrast") {
		t.Error("high-contrast should be builtin")
	}
	if IsBuiltinTheme("mine.yaml") {
		t.Error("mine.yaml should not be builtin")
	}
}
