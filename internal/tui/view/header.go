package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// Header renders the assignment title, topic and where the student is in
// the assignment.
func Header(snap debate.Snapshot, width int) string {
	a := snap.Assignment
	p := snap.Progress
	w := contentWidth(width)

	title := a.Title
	if title == "" {
		title = "Debate"
	}
	topic := p.Topic
	if topic == "" {
		topic = a.Topic
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(TruncateANSI(title, w)))
	b.WriteString("\n")
	if topic != "" {
		b.WriteString(styles.Subtitle.Render(TruncateANSI(topic, w)))
		b.WriteString("\n")
	}
	b.WriteString(Progress(snap))
	return b.String()
}

// Progress renders the one-line position indicator, e.g.
// "Debate 2/3 · Round 1 · Statement 3/5 · PRO".
func Progress(snap debate.Snapshot) string {
	p := snap.Progress
	sd := p.StudentDebate

	total := snap.Assignment.Debates
	if total <= 0 {
		total = debate.NumDebates
	}
	parts := []string{fmt.Sprintf("Debate %d/%d", max(sd.CurrentDebate, 1), total)}
	if sd.CurrentRound > 0 {
		parts = append(parts, fmt.Sprintf("Round %d", sd.CurrentRound))
	}
	if p.StatementsPerRound > 0 {
		parts = append(parts, fmt.Sprintf("Statement %d/%d", min(p.StudentStatements()+1, p.StatementsPerRound), p.StatementsPerRound))
	}
	line := styles.Muted.Render(strings.Join(parts, " · "))

	if pos := sd.CurrentPosition(); pos.Chosen() {
		line += " " + styles.ForPosition(pos).Header.Render(strings.ToUpper(string(pos)))
	}
	return line
}
