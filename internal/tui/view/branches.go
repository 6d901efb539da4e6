package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// Loading renders the frame shown before the first snapshot arrives.
func Loading(spinner string) string {
	return spinner + " " + styles.Muted.Render("Loading debate...")
}

// LoadError renders the frame shown when the first fetch failed. There is
// no automatic retry.
func LoadError(err error, width int) string {
	var b strings.Builder
	b.WriteString(styles.Error.Bold(true).Render("Failed to load debate"))
	b.WriteString("\n")
	b.WriteString(errors.UserMessage(err))
	return styles.ErrorBox.Width(contentWidth(width)).Render(b.String())
}

// ChoosePosition renders the pro/con picker for the current debate.
func ChoosePosition(snap debate.Snapshot, pending bool, width int) string {
	topic := snap.Progress.Topic
	if topic == "" {
		topic = snap.Assignment.Topic
	}
	n := snap.Progress.StudentDebate.CurrentDebate

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Choose your side for debate %d", max(n, 1))))
	b.WriteString("\n\n")
	if topic != "" {
		b.WriteString(styles.Text.Render(topic))
		b.WriteString("\n\n")
	}
	pro := styles.ForPosition(debate.PositionPro)
	con := styles.ForPosition(debate.PositionCon)
	b.WriteString(styles.HelpKey.Render("[p]") + " " + pro.Header.Render("PRO") + styles.Muted.Render("  argue for the motion"))
	b.WriteString("\n")
	b.WriteString(styles.HelpKey.Render("[c]") + " " + con.Header.Render("CON") + styles.Muted.Render("  argue against the motion"))
	if pending {
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Saving your choice..."))
	}
	return styles.ContentBox.Width(contentWidth(width)).Render(b.String())
}

// ComposeState holds what the statement editor frame needs.
type ComposeState struct {
	Editor    string
	Words     int
	Limits    debate.WordLimits
	Technique debate.Technique
	Focused   bool
	Pending   bool
}

// Compose renders the statement editor with its word meter and technique
// selector.
func Compose(state ComposeState, width int) string {
	var b strings.Builder
	b.WriteString(state.Editor)
	b.WriteString("\n")
	b.WriteString(WordMeter(state.Words, state.Limits))
	b.WriteString("   ")
	b.WriteString(TechniqueSelector(state.Technique))
	if state.Pending {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("Submitting..."))
	} else if !state.Focused {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("press i to keep writing"))
	}
	return b.String()
}

// AwaitAI renders the waiting indicator shown while the opponent replies.
func AwaitAI(spinner string, polling bool) string {
	msg := "Your opponent is preparing a response..."
	if !polling {
		msg = "Waiting for your opponent. Press r to check again."
	}
	return spinner + " " + styles.Muted.Render(msg)
}

// DebateComplete renders the end-of-debate summary.
func DebateComplete(snap debate.Snapshot, advancing bool, width int) string {
	sd := snap.Progress.StudentDebate
	n := sd.CurrentDebate
	total := snap.Assignment.Debates
	if total <= 0 {
		total = debate.NumDebates
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Debate %d complete", max(n, 1))))
	b.WriteString("\n\n")
	if score, ok := sd.Score(n); ok {
		b.WriteString(styles.Text.Render(fmt.Sprintf("Score: %.1f%%", score)))
		b.WriteString(" ")
		b.WriteString(styles.Primary.Bold(true).Render(debate.LetterGrade(score)))
	} else {
		b.WriteString(styles.Muted.Render("Scoring in progress..."))
	}
	if fallacies := sd.FallacyCount(n); fallacies > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(fmt.Sprintf("Your opponent slipped in %d fallacies.", fallacies)))
	}
	b.WriteString("\n\n")

	next := "Press enter to continue to the next debate."
	if n >= total {
		next = "Press enter to see your results."
	}
	if advancing {
		next = "Moving on..."
	}
	b.WriteString(styles.Secondary.Render(next))
	return styles.ContentBox.Width(contentWidth(width)).Render(b.String())
}

// Notice renders an inline message under the current frame. Errors that are
// guidance rather than failures render as warnings.
func Notice(err error, width int) string {
	if err == nil {
		return ""
	}
	text := errors.UserMessage(err)
	if errors.GetSeverity(err) == errors.SeverityWarning {
		return styles.NoticeBox.Width(contentWidth(width)).Render(text)
	}
	return styles.ErrorBox.Width(contentWidth(width)).Render(text)
}
