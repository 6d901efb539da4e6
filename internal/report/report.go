// Package report renders a finished assignment's score for the terminal and
// for export.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
)

// Format selects a report encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// Formats returns every supported format in display order.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown report format %q (want text, md or json)", s)).
		WithField("format")
}

// FormatForPath guesses the export format from a file extension. Anything
// that is not .json is written as markdown.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".txt":
		return FormatText
	default:
		return FormatMarkdown
	}
}

// Render writes score to w in the requested format.
func Render(w io.Writer, score debate.AssignmentScore, format Format) error {
	var err error
	switch format {
	case FormatText:
		_, err = io.WriteString(w, Text(score))
	case FormatMarkdown:
		_, err = io.WriteString(w, Markdown(score))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(toJSON(score))
	default:
		parsed, perr := ParseFormat(string(format))
		if perr != nil {
			return perr
		}
		return Render(w, score, parsed)
	}
	return err
}

// Export writes the report to path on fs, creating parent directories.
func Export(fs afero.Fs, path string, score debate.AssignmentScore, format Format) error {
	if path == "" {
		return errors.NewValidationError("export path is empty").WithField("export")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Render(f, score, format); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// Text renders the plain terminal view.
func Text(score debate.AssignmentScore) string {
	var sb strings.Builder
	sb.WriteString("ASSIGNMENT RESULTS\n")
	sb.WriteString(strings.Repeat("─", 40))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Assignment: %s\n", score.AssignmentID)
	if score.CompletedAt != nil {
		fmt.Fprintf(&sb, "Completed:  %s\n", score.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")

	if len(score.DebateScores) == 0 {
		sb.WriteString("No debate scores recorded.\n")
	}
	for i, s := range score.DebateScores {
		fmt.Fprintf(&sb, "Debate %d: %s\n", i+1, formatScore(s))
	}
	if score.ImprovementBonus != 0 {
		fmt.Fprintf(&sb, "Improvement bonus: %s\n", signed(score.ImprovementBonus))
	}
	if score.ConsistencyBonus != 0 {
		fmt.Fprintf(&sb, "Consistency bonus: %s\n", signed(score.ConsistencyBonus))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Final grade: %s", formatScore(score.FinalGrade))
	if score.LetterGrade != "" {
		fmt.Fprintf(&sb, " (%s)", score.LetterGrade)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Markdown renders a document suitable for sharing.
func Markdown(score debate.AssignmentScore) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Debate results: %s\n\n", score.AssignmentID)
	if score.CompletedAt != nil {
		fmt.Fprintf(&sb, "Completed %s\n\n", score.CompletedAt.UTC().Format(time.RFC3339))
	}

	sb.WriteString("| Debate | Score |\n|---|---|\n")
	for i, s := range score.DebateScores {
		fmt.Fprintf(&sb, "| %d | %s |\n", i+1, formatScore(s))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "- Improvement bonus: %s\n", signed(score.ImprovementBonus))
	fmt.Fprintf(&sb, "- Consistency bonus: %s\n", signed(score.ConsistencyBonus))
	fmt.Fprintf(&sb, "- **Final grade: %s", formatScore(score.FinalGrade))
	if score.LetterGrade != "" {
		fmt.Fprintf(&sb, " (%s)", score.LetterGrade)
	}
	sb.WriteString("**\n")
	return sb.String()
}

type jsonReport struct {
	AssignmentID     string     `json:"assignment_id"`
	DebateScores     []float64  `json:"debate_scores"`
	ImprovementBonus float64    `json:"improvement_bonus"`
	ConsistencyBonus float64    `json:"consistency_bonus"`
	FinalGrade       float64    `json:"final_grade"`
	LetterGrade      string     `json:"letter_grade,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func toJSON(score debate.AssignmentScore) jsonReport {
	scores := score.DebateScores
	if scores == nil {
		scores = []float64{}
	}
	return jsonReport{
		AssignmentID:     score.AssignmentID,
		DebateScores:     scores,
		ImprovementBonus: score.ImprovementBonus,
		ConsistencyBonus: score.ConsistencyBonus,
		FinalGrade:       score.FinalGrade,
		LetterGrade:      score.LetterGrade,
		CompletedAt:      score.CompletedAt,
	}
}

// formatScore drops a trailing ".0" so whole scores print as integers.
func formatScore(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", f), ".0")
}

func signed(f float64) string {
	if f > 0 {
		return "+" + formatScore(f)
	}
	return formatScore(f)
}
