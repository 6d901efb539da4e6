package api

import (
	"encoding/json"
	"testing"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
)

func decode(t *testing.T, s string) object {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return asObject(v)
}

func TestNormalizeProgress_SnakeAndCamel(t *testing.T) {
	snake := `{
		"student_debate": {"id": 7, "status": "debate_1", "current_debate": 1,
			"debate_1_position": "con", "debate_2_position": "pro", "debate_3_position": "choice",
			"debate_1_score": null, "debate_1_fallacies_injected": 2},
		"current_posts": [
			{"id": 11, "post_type": "student", "content": "one two three", "word_count": 3,
			 "clarity_score": 8, "evidence_score": 7, "logic_score": 9, "persuasiveness_score": 6, "rebuttal_score": 5,
			 "moderation_status": "approved", "created_at": "2026-10-01T12:00:00Z"},
			{"id": 12, "post_type": "ai", "content": "reply", "ai_personality": "socratic",
			 "contains_fallacy": true, "fallacy_type": "strawman"}
		],
		"available_challenges": [{"type": "fallacy", "key": "strawman", "label": "Straw man"}],
		"next_action": "submit_post",
		"can_submit_post": true,
		"statements_per_round": 5
	}`
	camel := `{
		"studentDebate": {"id": "7", "status": "debate_1", "currentDebate": "1",
			"debate_1Position": "con", "debate2Position": "pro", "debate_3Position": "choice",
			"debate_1FallaciesInjected": "2"},
		"currentPosts": [
			{"id": "11", "postType": "student", "content": "one two three", "wordCount": 3,
			 "clarityScore": 8, "evidenceScore": 7, "logicScore": 9, "persuasivenessScore": 6, "rebuttalScore": 5,
			 "moderationStatus": "approved", "createdAt": "2026-10-01T12:00:00Z"},
			{"id": 12, "postType": "ai", "content": "reply", "aiPersonality": "socratic",
			 "containsFallacy": true, "fallacyType": "strawman"}
		],
		"availableChallenges": [{"challengeType": "fallacy", "value": "strawman", "name": "Straw man"}],
		"nextAction": "submit_post",
		"canSubmitPost": true,
		"statementsPerRound": "5"
	}`

	for name, fixture := range map[string]string{"snake": snake, "camel": camel} {
		t.Run(name, func(t *testing.T) {
			p, err := normalizeProgress(decode(t, fixture))
			if err != nil {
				t.Fatalf("normalizeProgress() error = %v", err)
			}

			sd := p.StudentDebate
			if sd.ID != "7" || sd.CurrentDebate != 1 || sd.Status != debate.StatusDebate1 {
				t.Errorf("student debate = %+v", sd)
			}
			wantPos := []debate.Position{debate.PositionCon, debate.PositionPro, debate.PositionChoice}
			for i, want := range wantPos {
				if sd.Positions[i] != want {
					t.Errorf("Positions[%d] = %q, want %q", i, sd.Positions[i], want)
				}
			}
			if sd.FallacyCount(1) != 2 {
				t.Errorf("FallacyCount(1) = %d", sd.FallacyCount(1))
			}
			if _, ok := sd.Score(1); ok {
				t.Error("null score should be unset")
			}

			if len(p.Posts) != 2 {
				t.Fatalf("got %d posts", len(p.Posts))
			}
			student, ai := p.Posts[0], p.Posts[1]
			if student.ID != "11" || student.Type != debate.PostStudent || student.WordCount != 3 {
				t.Errorf("student post = %+v", student)
			}
			if student.Rubric == nil || student.Rubric.Total() != 35 {
				t.Errorf("rubric = %+v", student.Rubric)
			}
			if student.CreatedAt == nil || student.CreatedAt.Year() != 2026 {
				t.Errorf("CreatedAt = %v", student.CreatedAt)
			}
			if ai.Type != debate.PostAI || !ai.ContainsFallacy || ai.FallacyType != "strawman" || ai.Rubric != nil {
				t.Errorf("ai post = %+v", ai)
			}
			if ai.WordCount != 1 {
				t.Errorf("missing word count should be derived, got %d", ai.WordCount)
			}
			if ai.Moderation != debate.ModerationApproved {
				t.Errorf("missing moderation should default to approved, got %q", ai.Moderation)
			}

			if len(p.AvailableChallenges) != 1 || p.AvailableChallenges[0].Key != "strawman" ||
				p.AvailableChallenges[0].Kind != debate.ChallengeFallacy || p.AvailableChallenges[0].Label != "Straw man" {
				t.Errorf("challenges = %+v", p.AvailableChallenges)
			}
			if p.NextAction != debate.ActionSubmitPost || !p.CanSubmitPost || p.StatementsPerRound != 5 {
				t.Errorf("progress = %s/%v/%d", p.NextAction, p.CanSubmitPost, p.StatementsPerRound)
			}
		})
	}
}

func TestNormalizeProgress_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"unknown action", `{"next_action": "thinking"}`, true},
		{"missing action", `{"current_posts": []}`, true},
		{"not an object", `[1, 2]`, true},
		{"missing arrays", `{"next_action": "await_ai"}`, false},
		{"arrays of wrong type", `{"next_action": "await_ai", "current_posts": "none", "available_challenges": 4}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := normalizeProgress(decode(t, tt.body))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrMalformedProgress) {
					t.Fatalf("error = %v, want ErrMalformedProgress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if p.Posts == nil || len(p.Posts) != 0 || p.AvailableChallenges == nil || len(p.AvailableChallenges) != 0 {
				t.Errorf("arrays should normalize to empty, got %v / %v", p.Posts, p.AvailableChallenges)
			}
			if len(p.StudentDebate.Positions) != debate.NumDebates || p.StudentDebate.CurrentDebate != 1 {
				t.Errorf("student debate not defaulted: %+v", p.StudentDebate)
			}
		})
	}
}

func TestNormalizePost_NonNumericBecomesZero(t *testing.T) {
	p := normalizePost(decode(t, `{"id": "1", "post_type": "student", "content": "a b", "word_count": "lots",
		"clarity_score": "n/a", "bonus_points": {"x": 1}}`))
	if p.WordCount != 2 {
		t.Errorf("WordCount = %d, want derived 2", p.WordCount)
	}
	if p.Rubric == nil || p.Rubric.Clarity != 0 {
		t.Errorf("Rubric = %+v", p.Rubric)
	}
	if p.BonusPoints != 0 {
		t.Errorf("BonusPoints = %v", p.BonusPoints)
	}
}

func TestNormalizeReceipt(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantFlagged bool
		wantID      string
	}{
		{"bare post", `{"id": 5, "post_type": "student", "moderation_status": "approved"}`, false, "5"},
		{"envelope", `{"post": {"id": 6}, "flagged": true}`, true, "6"},
		{"flagged status", `{"id": 7, "moderationStatus": "flagged"}`, true, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := normalizeReceipt(decode(t, tt.body))
			if r.Flagged != tt.wantFlagged || r.Post.ID != tt.wantID {
				t.Errorf("receipt = %+v", r)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	s := normalizeScore(decode(t, `{"debate_1_score": 80, "debate_2Score": "85.5", "debate3Score": 90,
		"improvementBonus": 3, "consistency_bonus": 2, "final_grade": 90.5}`))
	want := []float64{80, 85.5, 90}
	for i := range want {
		if s.DebateScores[i] != want[i] {
			t.Errorf("DebateScores[%d] = %v, want %v", i, s.DebateScores[i], want[i])
		}
	}
	if s.ImprovementBonus != 3 || s.ConsistencyBonus != 2 || s.FinalGrade != 90.5 {
		t.Errorf("score = %+v", s)
	}
	if s.LetterGrade != "A" {
		t.Errorf("LetterGrade = %q, want derived A", s.LetterGrade)
	}
}

func TestNormalizeAdvance(t *testing.T) {
	tests := []struct {
		body string
		want debate.AdvanceResult
	}{
		{`{"assignment_complete": false, "next_debate": 2}`, debate.AdvanceResult{NextDebate: 2}},
		{`{"assignmentComplete": true}`, debate.AdvanceResult{AssignmentComplete: true}},
		{`{"next_action": "assignment_complete"}`, debate.AdvanceResult{AssignmentComplete: true}},
		{`{"status": "completed"}`, debate.AdvanceResult{AssignmentComplete: true}},
		{`{"currentDebate": 3}`, debate.AdvanceResult{NextDebate: 3}},
	}
	for _, tt := range tests {
		if got := normalizeAdvance(decode(t, tt.body)); got != tt.want {
			t.Errorf("normalizeAdvance(%s) = %+v, want %+v", tt.body, got, tt.want)
		}
	}
}

func TestErrorBody(t *testing.T) {
	tests := []struct {
		body        string
		wantMsg     string
		wantCode    string
		wantFlagged bool
	}{
		{`{"detail": "Not your turn"}`, "Not your turn", "", false},
		{`{"detail": {"message": "Held for review", "flagged": true}}`, "Held for review", "", true},
		{`{"detail": [{"msg": "field required"}]}`, "field required", "", false},
		{`{"error": "bad", "code": "content_flagged"}`, "bad", "content_flagged", true},
		{`{"message": "nope", "flagged": true}`, "nope", "", true},
	}
	for _, tt := range tests {
		o := decode(t, tt.body)
		if got := errorMessage(o); got != tt.wantMsg {
			t.Errorf("errorMessage(%s) = %q, want %q", tt.body, got, tt.wantMsg)
		}
		if got := errorCode(o); got != tt.wantCode {
			t.Errorf("errorCode(%s) = %q, want %q", tt.body, got, tt.wantCode)
		}
		if got := isFlaggedBody(o); got != tt.wantFlagged {
			t.Errorf("isFlaggedBody(%s) = %v, want %v", tt.body, got, tt.wantFlagged)
		}
	}
}

func TestDebateKeys(t *testing.T) {
	got := debateKeys(2, "fallacies_injected")
	want := []string{"debate_2_fallacies_injected", "debate_2FallaciesInjected", "debate2FallaciesInjected"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("debateKeys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
