package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// ChallengeState holds what the challenge picker needs to render.
type ChallengeState struct {
	Target  debate.Post
	Options []debate.ChallengeOption
	Cursor  int
	Pending bool
}

// ChallengePanel renders the picker for challenging the opponent's latest
// statement, grouped into fallacies and appeals.
func ChallengePanel(state ChallengeState, width int) string {
	w := contentWidth(width)

	var b strings.Builder
	b.WriteString(styles.Title.Render("Challenge the opponent"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(TruncateANSI(firstLine(state.Target.Content), w)))
	b.WriteString("\n\n")

	var lastKind debate.ChallengeKind
	for i, opt := range state.Options {
		if opt.Kind != lastKind {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.Secondary.Bold(true).Render(kindHeading(opt.Kind)))
			b.WriteString("\n")
			lastKind = opt.Kind
		}
		label := opt.Label
		if label == "" {
			label = opt.Key
		}
		if i == state.Cursor {
			b.WriteString(styles.Selected.Render("▸ " + label))
			if opt.Description != "" {
				b.WriteString("\n    ")
				b.WriteString(styles.Muted.Render(TruncateANSI(opt.Description, w-4)))
			}
		} else {
			b.WriteString(styles.Unselected.Render("  " + label))
		}
		b.WriteString("\n")
	}

	if state.Pending {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("Sending challenge..."))
	}
	return styles.ContentBox.Width(w).Render(strings.TrimRight(b.String(), "\n"))
}

// ChallengeVerdict renders the server's verdict on a challenge.
func ChallengeVerdict(result debate.ChallengeResult) string {
	var head string
	if result.Correct {
		head = styles.Secondary.Bold(true).Render("Correct!")
		if result.BonusPoints > 0 {
			head += styles.Secondary.Render(fmt.Sprintf(" +%.0f bonus points", result.BonusPoints))
		}
	} else {
		head = styles.Warning.Bold(true).Render("Not quite.")
	}
	if result.Explanation == "" {
		return head
	}
	return head + " " + styles.Text.Render(result.Explanation)
}

func kindHeading(kind debate.ChallengeKind) string {
	switch kind {
	case debate.ChallengeFallacy:
		return "Fallacies"
	case debate.ChallengeAppeal:
		return "Appeals"
	default:
		return "Other"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
