package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

// PositionStyle is the set of styles for one side of a debate.
type PositionStyle struct {
	Header lipgloss.Style
	Body   lipgloss.Style
	Accent lipgloss.Style
}

// ForPosition returns the styles for a side. Unchosen sides use the muted
// color. Build it once per render and pass it down.
func ForPosition(position debate.Position) PositionStyle {
	color := MutedColor
	switch position {
	case debate.PositionPro:
		color = ProColor
	case debate.PositionCon:
		color = ConColor
	}
	return PositionStyle{
		Header: lipgloss.NewStyle().Bold(true).Foreground(color),
		Body: lipgloss.NewStyle().
			Foreground(TextColor).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(color).
			PaddingLeft(1),
		Accent: lipgloss.NewStyle().Foreground(color),
	}
}

// ForAI returns the styles for the AI opponent's posts.
func ForAI() PositionStyle {
	return PositionStyle{
		Header: lipgloss.NewStyle().Bold(true).Foreground(AIColor),
		Body: lipgloss.NewStyle().
			Foreground(TextColor).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(AIColor).
			PaddingLeft(1),
		Accent: lipgloss.NewStyle().Foreground(AIColor),
	}
}
