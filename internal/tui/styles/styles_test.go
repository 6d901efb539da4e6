package styles

import (
	"testing"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

func TestSetActiveTheme(t *testing.T) {
	t.Cleanup(func() { SetActiveTheme(ThemeDefault) })

	SetActiveTheme(ThemeClassroom)
	if PrimaryColor != ClassroomPalette().Primary {
		t.Errorf("PrimaryColor = %v, want classroom primary", PrimaryColor)
	}
	if ActivePalette().Con != ClassroomPalette().Con {
		t.Errorf("ActivePalette().Con = %v", ActivePalette().Con)
	}
	if got := Title.GetForeground(); got != ClassroomPalette().Primary {
		t.Errorf("Title foreground = %v", got)
	}

	SetActiveTheme(ThemeDefault)
	if PrimaryColor != DefaultPalette().Primary {
		t.Errorf("PrimaryColor = %v after reset", PrimaryColor)
	}
}

func TestForPosition(t *testing.T) {
	tests := []struct {
		position debate.Position
		want     any
	}{
		{debate.PositionPro, ProColor},
		{debate.PositionCon, ConColor},
		{debate.PositionChoice, MutedColor},
		{"", MutedColor},
	}
	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			s := ForPosition(tt.position)
			if got := s.Accent.GetForeground(); got != tt.want {
				t.Errorf("Accent foreground = %v, want %v", got, tt.want)
			}
			if got := s.Body.GetBorderLeftForeground(); got != tt.want {
				t.Errorf("Body border = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForAI(t *testing.T) {
	ai := ForAI()
	if got := ai.Header.GetForeground(); got != AIColor {
		t.Errorf("AI header = %v, want %v", got, AIColor)
	}
	if got := ai.Body.GetBorderLeftForeground(); got != AIColor {
		t.Errorf("AI border = %v, want %v", got, AIColor)
	}
}
