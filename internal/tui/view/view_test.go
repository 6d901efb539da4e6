package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	rerrors "github.com/Iron-Ham/rebuttal/internal/errors"
	"github.com/Iron-Ham/rebuttal/internal/tui/keymap"
)

func ptr(f float64) *float64 { return &f }

func snapshot() debate.Snapshot {
	return debate.Snapshot{
		Assignment: debate.Assignment{Title: "Civics 101", Topic: "Voting should be mandatory", Debates: 3},
		Progress: debate.Progress{
			StudentDebate: debate.StudentDebate{
				CurrentDebate: 2,
				CurrentRound:  1,
				Positions:     []debate.Position{debate.PositionPro, debate.PositionCon, debate.PositionChoice},
				Scores:        []*float64{ptr(82), ptr(91.5), nil},
				FallacyCounts: []int{1, 2, 0},
			},
			Posts: []debate.Post{
				{ID: "1", Type: debate.PostStudent, StatementNumber: 1, Content: "Civic duty matters.", WordCount: 3, Technique: debate.TechniqueEthos, Rubric: &debate.Rubric{Clarity: 8, Evidence: 7, Logic: 8, Persuasiveness: 7, Rebuttal: 6}},
				{ID: "2", Type: debate.PostAI, StatementNumber: 2, Content: "Everyone knows that is wrong.", AIPersonality: "Socratic"},
			},
			AvailableChallenges: []debate.ChallengeOption{{Kind: debate.ChallengeFallacy, Key: "bandwagon", Label: "Bandwagon"}},
			NextAction:          debate.ActionSubmitPost,
			StatementsPerRound:  5,
		},
	}
}

func TestTruncateANSI(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny width", "hello", 2, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateANSI(tt.in, tt.width); got != tt.want {
				t.Errorf("TruncateANSI(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}

	styled := lipgloss.NewStyle().Bold(true).Render("a fairly long styled line")
	if got := lipgloss.Width(TruncateANSI(styled, 10)); got > 10 {
		t.Errorf("styled truncation width = %d, want <= 10", got)
	}
}

func TestHeader(t *testing.T) {
	got := Header(snapshot(), 80)
	for _, want := range []string{"Civics 101", "Voting should be mandatory", "Debate 2/3", "Round 1", "Statement 2/5", "CON"} {
		if !strings.Contains(got, want) {
			t.Errorf("Header() missing %q:\n%s", want, got)
		}
	}
}

func TestTranscript(t *testing.T) {
	snap := snapshot()
	got := Transcript(snap.Progress, 80, 0, false)
	for _, want := range []string{"You (CON)", "Opponent (PRO)", "Socratic", "ethos", "score 36/50", "press x to challenge"} {
		if !strings.Contains(got, want) {
			t.Errorf("Transcript() missing %q:\n%s", want, got)
		}
	}

	snap.Progress.AvailableChallenges = nil
	if strings.Contains(Transcript(snap.Progress, 80, 0, false), "press x") {
		t.Error("challenge hint shown without a catalog")
	}
}

func TestTranscript_ChallengeHint(t *testing.T) {
	p := snapshot().Progress
	tests := []struct {
		name      string
		composing bool
		want      string
		wantNot   string
	}{
		{"browsing", false, "press x to challenge", "esc, then x"},
		{"composing", true, "press esc, then x to challenge", "press x to challenge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transcript(p, 80, 0, tt.composing)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Transcript() missing %q:\n%s", tt.want, got)
			}
			if strings.Contains(got, tt.wantNot) {
				t.Errorf("Transcript() contains %q:\n%s", tt.wantNot, got)
			}
		})
	}
}

func TestTranscript_Limits(t *testing.T) {
	p := snapshot().Progress
	got := Transcript(p, 80, 1, false)
	if strings.Contains(got, "Civic duty") {
		t.Error("older post should be elided")
	}
	if !strings.Contains(got, "1 earlier statements") {
		t.Errorf("missing elision marker:\n%s", got)
	}

	if got := Transcript(debate.Progress{}, 80, 0, false); !strings.Contains(got, "No statements yet") {
		t.Errorf("empty transcript = %q", got)
	}
}

func TestTranscript_Moderation(t *testing.T) {
	p := debate.Progress{Posts: []debate.Post{
		{Type: debate.PostStudent, Content: "held", Moderation: debate.ModerationPending},
		{Type: debate.PostStudent, Content: "flagged", Moderation: debate.ModerationFlagged},
	}}
	got := Transcript(p, 80, 0, false)
	if !strings.Contains(got, "awaiting review") || !strings.Contains(got, "flagged for teacher review") {
		t.Errorf("moderation notes missing:\n%s", got)
	}
}

func TestWordMeter(t *testing.T) {
	limits := debate.DefaultWordLimits
	tests := []struct {
		count int
		want  string
	}{
		{0, "75 to go"},
		{74, "1 to go"},
		{75, "75 words (75-300)"},
		{300, "300 words (75-300)"},
		{301, "1 over"},
	}
	for _, tt := range tests {
		if got := WordMeter(tt.count, limits); !strings.Contains(got, tt.want) {
			t.Errorf("WordMeter(%d) = %q, want containing %q", tt.count, got, tt.want)
		}
	}
}

func TestChoosePosition(t *testing.T) {
	got := ChoosePosition(snapshot(), false, 80)
	for _, want := range []string{"debate 2", "[p]", "PRO", "[c]", "CON"} {
		if !strings.Contains(got, want) {
			t.Errorf("ChoosePosition() missing %q", want)
		}
	}
	if !strings.Contains(ChoosePosition(snapshot(), true, 80), "Saving your choice") {
		t.Error("pending state not shown")
	}
}

func TestCompose(t *testing.T) {
	got := Compose(ComposeState{Editor: "EDITOR", Words: 80, Limits: debate.DefaultWordLimits, Technique: debate.TechniqueLogos}, 80)
	for _, want := range []string{"EDITOR", "80 words", "logos", "press i"} {
		if !strings.Contains(got, want) {
			t.Errorf("Compose() missing %q", want)
		}
	}
	if got := Compose(ComposeState{Focused: true, Pending: true, Limits: debate.DefaultWordLimits}, 80); !strings.Contains(got, "Submitting") {
		t.Error("pending state not shown")
	}
}

func TestAwaitAI(t *testing.T) {
	if got := AwaitAI("*", true); !strings.Contains(got, "preparing a response") {
		t.Errorf("AwaitAI(polling) = %q", got)
	}
	if got := AwaitAI("*", false); !strings.Contains(got, "Press r") {
		t.Errorf("AwaitAI(stopped) = %q", got)
	}
}

func TestDebateComplete(t *testing.T) {
	got := DebateComplete(snapshot(), false, 80)
	for _, want := range []string{"Debate 2 complete", "91.5%", "A", "2 fallacies", "next debate"} {
		if !strings.Contains(got, want) {
			t.Errorf("DebateComplete() missing %q:\n%s", want, got)
		}
	}

	last := snapshot()
	last.Progress.StudentDebate.CurrentDebate = 3
	if got := DebateComplete(last, false, 80); !strings.Contains(got, "Scoring in progress") || !strings.Contains(got, "see your results") {
		t.Errorf("final debate summary:\n%s", got)
	}
	if got := DebateComplete(snapshot(), true, 80); !strings.Contains(got, "Moving on") {
		t.Error("advancing state not shown")
	}
}

func TestChallengePanel(t *testing.T) {
	state := ChallengeState{
		Target: debate.Post{Content: "Everyone knows that is wrong.\nSecond line"},
		Options: []debate.ChallengeOption{
			{Kind: debate.ChallengeFallacy, Key: "bandwagon", Label: "Bandwagon", Description: "Appeal to popularity"},
			{Kind: debate.ChallengeFallacy, Key: "straw_man", Label: "Straw man"},
			{Kind: debate.ChallengeAppeal, Key: "pathos", Label: "Pathos"},
		},
		Cursor: 0,
	}
	got := ChallengePanel(state, 80)
	for _, want := range []string{"Fallacies", "Appeals", "▸ Bandwagon", "Appeal to popularity", "Straw man", "Everyone knows"} {
		if !strings.Contains(got, want) {
			t.Errorf("ChallengePanel() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Second line") {
		t.Error("target preview should be one line")
	}
}

func TestChallengeVerdict(t *testing.T) {
	got := ChallengeVerdict(debate.ChallengeResult{Correct: true, BonusPoints: 3, Explanation: "Nice catch."})
	if !strings.Contains(got, "Correct") || !strings.Contains(got, "+3") || !strings.Contains(got, "Nice catch.") {
		t.Errorf("ChallengeVerdict() = %q", got)
	}
	if got := ChallengeVerdict(debate.ChallengeResult{}); !strings.Contains(got, "Not quite") {
		t.Errorf("ChallengeVerdict(wrong) = %q", got)
	}
}

func TestNotice(t *testing.T) {
	if Notice(nil, 80) != "" {
		t.Error("nil error should render nothing")
	}
	got := Notice(rerrors.ErrContentFlagged, 80)
	if !strings.Contains(got, "flagged for review") {
		t.Errorf("Notice(flagged) = %q", got)
	}
	if got := LoadError(errors.New("boom"), 80); !strings.Contains(got, "Failed to load debate") {
		t.Errorf("LoadError() = %q", got)
	}
}

func TestHelpBar(t *testing.T) {
	km := keymap.DefaultKeymap()
	bindings := km.GetModeBindings(keymap.ModeBrowse)
	got := HelpBar(bindings, 0)
	for _, want := range []string{"[i] write", "[ctrl+s]", "[x]", "[q] quit"} {
		if !strings.Contains(got, want) {
			t.Errorf("HelpBar() missing %q:\n%s", want, got)
		}
	}

	if got := HelpBar(bindings, 20); lipgloss.Width(got) > 20 {
		t.Errorf("HelpBar width = %d, want <= 20", lipgloss.Width(got))
	}
}
