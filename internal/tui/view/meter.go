package view

import (
	"fmt"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// WordMeter renders the live word count against the limits. It reads as a
// warning below the minimum and an error above the maximum.
func WordMeter(count int, limits debate.WordLimits) string {
	text := fmt.Sprintf("%d words (%d-%d)", count, limits.Min, limits.Max)
	switch {
	case count > limits.Max:
		return styles.Error.Render(text + fmt.Sprintf(" · %d over", count-limits.Max))
	case count < limits.Min:
		return styles.Warning.Render(text + fmt.Sprintf(" · %d to go", limits.Min-count))
	default:
		return styles.Secondary.Render(text)
	}
}

// TechniqueSelector renders the technique choices with the current one
// highlighted.
func TechniqueSelector(current debate.Technique) string {
	out := styles.Muted.Render("technique ")
	for _, t := range debate.Techniques() {
		label := string(t)
		if t == debate.TechniqueNone {
			label = "none"
		}
		if t == current {
			out += styles.Selected.Render(label)
		} else {
			out += styles.Unselected.Render(label)
		}
	}
	return out
}
