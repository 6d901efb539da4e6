package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// transcriptStyles holds the per-side styles for one render.
type transcriptStyles struct {
	student styles.PositionStyle
	ai      styles.PositionStyle
}

func (s transcriptStyles) forPost(post debate.Post) styles.PositionStyle {
	if post.Type == debate.PostAI {
		return s.ai
	}
	return s.student
}

// Transcript renders the current debate's posts in order. maxPosts limits
// output to the most recent posts; zero shows all of them. composing means
// the editor has the keyboard, so x would type rather than challenge.
func Transcript(p debate.Progress, width, maxPosts int, composing bool) string {
	if len(p.Posts) == 0 {
		return styles.Muted.Render("No statements yet.")
	}

	student := p.StudentDebate.CurrentPosition()
	sides := transcriptStyles{
		student: styles.ForPosition(student),
		ai:      styles.ForAI(),
	}
	hint := challengeHint(composing)
	start := 0
	if maxPosts > 0 && len(p.Posts) > maxPosts {
		start = len(p.Posts) - maxPosts
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("… %d earlier statements", start)))
		b.WriteString("\n\n")
	}
	for i := start; i < len(p.Posts); i++ {
		if i > start {
			b.WriteString("\n\n")
		}
		postHint := ""
		if p.Challengeable(i) {
			postHint = hint
		}
		b.WriteString(renderPost(p.Posts[i], student, sides.forPost(p.Posts[i]), width, postHint))
	}
	return b.String()
}

func challengeHint(composing bool) string {
	if composing {
		return "  spot a fallacy or appeal? press esc, then x to challenge"
	}
	return "  spot a fallacy or appeal? press x to challenge"
}

func renderPost(post debate.Post, student debate.Position, st styles.PositionStyle, width int, hint string) string {
	w := contentWidth(width)

	var b strings.Builder
	b.WriteString(st.Header.Render(postAuthor(post, student)))
	if meta := postMeta(post); meta != "" {
		b.WriteString(" ")
		b.WriteString(styles.Muted.Render(meta))
	}
	b.WriteString("\n")
	b.WriteString(st.Body.Width(w).Render(post.Content))

	switch post.Moderation {
	case debate.ModerationPending:
		b.WriteString("\n")
		b.WriteString(styles.Warning.Render("  awaiting review"))
	case debate.ModerationFlagged, debate.ModerationRejected:
		b.WriteString("\n")
		b.WriteString(styles.Error.Render("  flagged for teacher review"))
	}

	if post.Rubric != nil {
		b.WriteString("\n")
		b.WriteString(st.Accent.Render(fmt.Sprintf("  score %.0f/50", post.Rubric.Total())))
		if post.BonusPoints > 0 {
			b.WriteString(styles.Secondary.Render(fmt.Sprintf(" +%.0f bonus", post.BonusPoints)))
		}
	}
	if hint != "" {
		b.WriteString("\n")
		b.WriteString(st.Accent.Render(hint))
	}
	return b.String()
}

func postAuthor(post debate.Post, student debate.Position) string {
	if post.Type == debate.PostAI {
		side := student.Opponent()
		if side == "" {
			return "Opponent"
		}
		return fmt.Sprintf("Opponent (%s)", strings.ToUpper(string(side)))
	}
	if !student.Chosen() {
		return "You"
	}
	return fmt.Sprintf("You (%s)", strings.ToUpper(string(student)))
}

func postMeta(post debate.Post) string {
	var parts []string
	if post.StatementNumber > 0 {
		parts = append(parts, fmt.Sprintf("#%d", post.StatementNumber))
	}
	if post.Type == debate.PostAI && post.AIPersonality != "" {
		parts = append(parts, post.AIPersonality)
	}
	if post.Technique != debate.TechniqueNone {
		parts = append(parts, string(post.Technique))
	}
	if post.WordCount > 0 {
		parts = append(parts, fmt.Sprintf("%d words", post.WordCount))
	}
	return strings.Join(parts, " · ")
}
