package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
)

// object is a decoded JSON object.
type object map[string]any

// asObject converts v to an object, returning nil for anything else.
func asObject(v any) object {
	switch m := v.(type) {
	case map[string]any:
		return object(m)
	case object:
		return m
	default:
		return nil
	}
}

// lookup returns the first present, non-null value among keys.
func (o object) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (o object) str(keys ...string) string {
	v, _ := o.lookup(keys...)
	return cast.ToString(v)
}

func (o object) integer(keys ...string) int {
	v, _ := o.lookup(keys...)
	return cast.ToInt(v)
}

func (o object) number(keys ...string) float64 {
	v, _ := o.lookup(keys...)
	return cast.ToFloat64(v)
}

func (o object) optNumber(keys ...string) *float64 {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil
	}
	f := cast.ToFloat64(v)
	return &f
}

func (o object) boolean(keys ...string) bool {
	v, _ := o.lookup(keys...)
	return cast.ToBool(v)
}

func (o object) optTime(keys ...string) *time.Time {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}

func (o object) obj(keys ...string) object {
	v, _ := o.lookup(keys...)
	return asObject(v)
}

// list returns the array under keys; missing or non-array values are empty.
func (o object) list(keys ...string) []any {
	v, _ := o.lookup(keys...)
	s, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	return s
}

// keys returns the snake_case and camelCase spellings of a snake_case key.
func keys(snake string) []string {
	camel := camelCase(snake)
	if camel == snake {
		return []string{snake}
	}
	return []string{snake, camel}
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// debateKeys returns the spellings of a per-debate field such as
// debate_2_position: debate_2_position, debate_2Position and debate2Position.
func debateKeys(n int, field string) []string {
	f := camelCase(field)
	f = strings.ToUpper(f[:1]) + f[1:]
	return []string{
		fmt.Sprintf("debate_%d_%s", n, field),
		fmt.Sprintf("debate_%d%s", n, f),
		fmt.Sprintf("debate%d%s", n, f),
	}
}

func normalizeAssignment(o object) debate.Assignment {
	a := debate.Assignment{
		ID:                 o.str("id"),
		Title:              o.str("title"),
		Topic:              o.str("topic"),
		Description:        o.str("description"),
		DueDate:            o.optTime(keys("due_date")...),
		StatementsPerRound: o.integer(keys("statements_per_round")...),
		Debates:            o.integer(keys("num_debates")...),
	}
	if a.Debates <= 0 {
		a.Debates = debate.NumDebates
	}
	return a
}

func normalizeStudentDebate(o object) debate.StudentDebate {
	sd := debate.StudentDebate{
		ID:              o.str("id"),
		AssignmentID:    o.str(keys("assignment_id")...),
		Status:          debate.Status(o.str("status")),
		CurrentDebate:   o.integer(keys("current_debate")...),
		CurrentRound:    o.integer(keys("current_round")...),
		Positions:       make([]debate.Position, debate.NumDebates),
		FallacyCounts:   make([]int, debate.NumDebates),
		Scores:          make([]*float64, debate.NumDebates),
		FinalPercentage: o.optNumber(keys("final_percentage")...),
		StartedAt:       o.optTime(keys("started_at")...),
		CompletedAt:     o.optTime(keys("completed_at")...),
		UpdatedAt:       o.optTime(keys("updated_at")...),
	}
	for n := 1; n <= debate.NumDebates; n++ {
		sd.Positions[n-1] = debate.Position(o.str(debateKeys(n, "position")...))
		sd.FallacyCounts[n-1] = o.integer(debateKeys(n, "fallacies_injected")...)
		sd.Scores[n-1] = o.optNumber(debateKeys(n, "score")...)
	}
	if sd.CurrentDebate < 1 {
		sd.CurrentDebate = 1
	}
	return sd
}

func normalizePost(o object) debate.Post {
	p := debate.Post{
		ID:              o.str("id"),
		DebateNumber:    o.integer(keys("debate_number")...),
		RoundNumber:     o.integer(keys("round_number")...),
		StatementNumber: o.integer(keys("statement_number")...),
		Type:            debate.PostType(o.str(append(keys("post_type"), "type")...)),
		Content:         o.str("content"),
		WordCount:       o.integer(keys("word_count")...),
		AIPersonality:   o.str(keys("ai_personality")...),
		ContainsFallacy: o.boolean(keys("contains_fallacy")...),
		FallacyType:     o.str(keys("fallacy_type")...),
		Technique:       debate.Technique(o.str(keys("rhetorical_technique")...)),
		BonusPoints:     o.number(keys("bonus_points")...),
		FinalPercentage: o.optNumber(keys("final_percentage")...),
		Moderation:      debate.ModerationStatus(o.str(keys("moderation_status")...)),
		CreatedAt:       o.optTime(keys("created_at")...),
	}
	if p.Moderation == "" {
		p.Moderation = debate.ModerationApproved
	}
	if p.WordCount == 0 && p.Content != "" {
		p.WordCount = debate.CountWords(p.Content)
	}

	scored := false
	for _, k := range []string{"clarity_score", "evidence_score", "logic_score", "persuasiveness_score", "rebuttal_score"} {
		if _, ok := o.lookup(keys(k)...); ok {
			scored = true
			break
		}
	}
	if scored && p.Type != debate.PostAI {
		p.Rubric = &debate.Rubric{
			Clarity:        o.number(keys("clarity_score")...),
			Evidence:       o.number(keys("evidence_score")...),
			Logic:          o.number(keys("logic_score")...),
			Persuasiveness: o.number(keys("persuasiveness_score")...),
			Rebuttal:       o.number(keys("rebuttal_score")...),
		}
	}
	return p
}

func normalizeChallengeOption(o object) debate.ChallengeOption {
	return debate.ChallengeOption{
		Kind:        debate.ChallengeKind(o.str(append(keys("challenge_type"), "type")...)),
		Key:         o.str("key", "value", "id"),
		Label:       o.str("label", "name"),
		Description: o.str("description"),
	}
}

// normalizeProgress converts a progress payload. Only an absent or unknown
// nextAction is an error; every other gap is filled with a zero value.
func normalizeProgress(o object) (debate.Progress, error) {
	if o == nil {
		return debate.Progress{}, errors.Wrap(errors.ErrMalformedProgress, "progress is not an object")
	}
	action, err := debate.ParseNextAction(o.str(keys("next_action")...))
	if err != nil {
		return debate.Progress{}, errors.Wrap(errors.ErrMalformedProgress, err.Error())
	}

	p := debate.Progress{
		StudentDebate:       normalizeStudentDebate(o.obj(keys("student_debate")...)),
		Posts:               []debate.Post{},
		AvailableChallenges: []debate.ChallengeOption{},
		NextAction:          action,
		CanSubmitPost:       o.boolean(keys("can_submit_post")...),
		StatementsPerRound:  o.integer(keys("statements_per_round")...),
		CurrentStatement:    o.integer(keys("current_statement")...),
		Topic:               o.str("topic"),
	}
	if _, ok := o.lookup(keys("can_submit_post")...); !ok {
		p.CanSubmitPost = action == debate.ActionSubmitPost
	}

	for _, raw := range o.list(append(keys("current_posts"), "posts")...) {
		if po := asObject(raw); po != nil {
			p.Posts = append(p.Posts, normalizePost(po))
		}
	}
	for _, raw := range o.list(keys("available_challenges")...) {
		if co := asObject(raw); co != nil {
			p.AvailableChallenges = append(p.AvailableChallenges, normalizeChallengeOption(co))
		}
	}
	return p, nil
}

func normalizeChallengeResult(o object) debate.ChallengeResult {
	return debate.ChallengeResult{
		Correct:     o.boolean(append(keys("is_correct"), "correct")...),
		BonusPoints: o.number(keys("bonus_points")...),
		Explanation: o.str("explanation", "feedback", "message"),
	}
}

func normalizeAdvance(o object) debate.AdvanceResult {
	r := debate.AdvanceResult{
		AssignmentComplete: o.boolean(keys("assignment_complete")...),
		NextDebate:         o.integer(append(keys("next_debate"), keys("current_debate")...)...),
	}
	if debate.NextAction(o.str(keys("next_action")...)) == debate.ActionAssignmentComplete ||
		debate.Status(o.str("status")) == debate.StatusCompleted {
		r.AssignmentComplete = true
	}
	return r
}

func normalizeScore(o object) debate.AssignmentScore {
	s := debate.AssignmentScore{
		AssignmentID:     o.str(keys("assignment_id")...),
		DebateScores:     make([]float64, debate.NumDebates),
		ImprovementBonus: o.number(keys("improvement_bonus")...),
		ConsistencyBonus: o.number(keys("consistency_bonus")...),
		FinalGrade:       o.number(keys("final_grade")...),
		LetterGrade:      o.str(keys("letter_grade")...),
		CompletedAt:      o.optTime(keys("completed_at")...),
	}
	for n := 1; n <= debate.NumDebates; n++ {
		s.DebateScores[n-1] = o.number(debateKeys(n, "score")...)
	}
	if s.LetterGrade == "" {
		s.LetterGrade = debate.LetterGrade(s.FinalGrade)
	}
	return s
}

// normalizeReceipt handles both a bare post and a {post, flagged} envelope.
func normalizeReceipt(o object) debate.PostReceipt {
	body := o
	if inner := o.obj("post"); inner != nil {
		body = inner
	}
	r := debate.PostReceipt{Post: normalizePost(body)}
	r.Flagged = o.boolean("flagged", "is_flagged", "isFlagged") || r.Post.Moderation == debate.ModerationFlagged
	return r
}

// errorMessage extracts a human message from an error body.
func errorMessage(o object) string {
	if o == nil {
		return ""
	}
	if v, ok := o.lookup("detail"); ok {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
		if d := asObject(v); d != nil {
			return d.str("message", "msg", "detail")
		}
		if items := o.list("detail"); len(items) > 0 {
			if first := asObject(items[0]); first != nil {
				return first.str("msg", "message")
			}
		}
	}
	return o.str("message", "error")
}

// errorCode extracts a machine code from an error body.
func errorCode(o object) string {
	if o == nil {
		return ""
	}
	if c := o.str("code", "error_code", "errorCode"); c != "" {
		return c
	}
	return o.obj("detail").str("code")
}

// isFlaggedBody reports whether an error body marks a post as flagged.
func isFlaggedBody(o object) bool {
	if o == nil {
		return false
	}
	if o.boolean("flagged", "is_flagged", "isFlagged") {
		return true
	}
	if d := o.obj("detail"); d != nil && d.boolean("flagged", "is_flagged", "isFlagged") {
		return true
	}
	return strings.EqualFold(errorCode(o), "content_flagged")
}
