package debate

import (
	"fmt"
	"time"
)

// NumDebates is the number of sequential debates in an assignment.
const NumDebates = 3

// NextAction is the server-computed step the student is on.
type NextAction string

// The five values the server may send. Anything else is a malformed payload.
const (
	ActionChoosePosition     NextAction = "choose_position"
	ActionSubmitPost         NextAction = "submit_post"
	ActionAwaitAI            NextAction = "await_ai"
	ActionDebateComplete     NextAction = "debate_complete"
	ActionAssignmentComplete NextAction = "assignment_complete"
)

// Actions returns every valid NextAction in flow order.
func Actions() []NextAction {
	return []NextAction{
		ActionChoosePosition,
		ActionSubmitPost,
		ActionAwaitAI,
		ActionDebateComplete,
		ActionAssignmentComplete,
	}
}

// Valid reports whether a is one of the five known actions.
func (a NextAction) Valid() bool {
	_, ok := Branch(a)
	return ok
}

// ParseNextAction validates a raw nextAction string.
func ParseNextAction(s string) (NextAction, error) {
	a := NextAction(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown nextAction %q", s)
	}
	return a, nil
}

// View identifies which UI branch renders.
type View int

const (
	ViewChoosePosition View = iota
	ViewSubmitPost
	ViewAwaitAI
	ViewDebateComplete
	ViewAssignmentComplete
)

func (v View) String() string {
	switch v {
	case ViewChoosePosition:
		return "choose_position"
	case ViewSubmitPost:
		return "submit_post"
	case ViewAwaitAI:
		return "await_ai"
	case ViewDebateComplete:
		return "debate_complete"
	case ViewAssignmentComplete:
		return "assignment_complete"
	default:
		return "unknown"
	}
}

// Branch maps a NextAction to exactly one View. The second result is false
// for values outside the five known actions; callers must not guess a view
// for those.
func Branch(a NextAction) (View, bool) {
	switch a {
	case ActionChoosePosition:
		return ViewChoosePosition, true
	case ActionSubmitPost:
		return ViewSubmitPost, true
	case ActionAwaitAI:
		return ViewAwaitAI, true
	case ActionDebateComplete:
		return ViewDebateComplete, true
	case ActionAssignmentComplete:
		return ViewAssignmentComplete, true
	default:
		return 0, false
	}
}

// Status is the assignment-level progress marker.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusDebate1    Status = "debate_1"
	StatusDebate2    Status = "debate_2"
	StatusDebate3    Status = "debate_3"
	StatusCompleted  Status = "completed"
)

// Position is the side argued in one debate. PositionChoice means the student
// picks a side when that debate begins.
type Position string

const (
	PositionPro    Position = "pro"
	PositionCon    Position = "con"
	PositionChoice Position = "choice"
)

// Chosen reports whether p is a concrete side.
func (p Position) Chosen() bool {
	return p == PositionPro || p == PositionCon
}

// Opponent returns the side the AI argues.
func (p Position) Opponent() Position {
	switch p {
	case PositionPro:
		return PositionCon
	case PositionCon:
		return PositionPro
	default:
		return ""
	}
}

// PostType distinguishes student statements from AI replies.
type PostType string

const (
	PostStudent PostType = "student"
	PostAI      PostType = "ai"
)

// ModerationStatus is the review state of a post.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationPending  ModerationStatus = "pending"
	ModerationFlagged  ModerationStatus = "flagged"
	ModerationRejected ModerationStatus = "rejected"
)

// Technique is the rhetorical technique a student may tag a statement with.
type Technique string

const (
	TechniqueNone   Technique = ""
	TechniqueEthos  Technique = "ethos"
	TechniquePathos Technique = "pathos"
	TechniqueLogos  Technique = "logos"
)

// Techniques lists the selectable techniques, starting with "none".
func Techniques() []Technique {
	return []Technique{TechniqueNone, TechniqueEthos, TechniquePathos, TechniqueLogos}
}

// Valid reports whether t is a known technique (including none).
func (t Technique) Valid() bool {
	switch t {
	case TechniqueNone, TechniqueEthos, TechniquePathos, TechniqueLogos:
		return true
	}
	return false
}

// StudentDebate is the per-student, per-assignment progress record.
// Per-debate fields are indexed by debate number minus one.
type StudentDebate struct {
	ID              string
	AssignmentID    string
	Status          Status
	CurrentDebate   int // 1..NumDebates
	CurrentRound    int
	Positions       []Position
	FallacyCounts   []int
	Scores          []*float64
	FinalPercentage *float64
	StartedAt       *time.Time
	CompletedAt     *time.Time
	UpdatedAt       *time.Time
}

// Position returns the side for debate n (1-based), or "" if unknown.
func (s StudentDebate) Position(n int) Position {
	if n < 1 || n > len(s.Positions) {
		return ""
	}
	return s.Positions[n-1]
}

// CurrentPosition returns the side for the debate in progress.
func (s StudentDebate) CurrentPosition() Position {
	return s.Position(s.CurrentDebate)
}

// Score returns the percentage score of debate n once it has one.
func (s StudentDebate) Score(n int) (float64, bool) {
	if n < 1 || n > len(s.Scores) || s.Scores[n-1] == nil {
		return 0, false
	}
	return *s.Scores[n-1], true
}

// FallacyCount returns how many fallacies the AI injected in debate n.
func (s StudentDebate) FallacyCount(n int) int {
	if n < 1 || n > len(s.FallacyCounts) {
		return 0
	}
	return s.FallacyCounts[n-1]
}

// Rubric holds the five scoring dimensions of a student post, each 0-10.
type Rubric struct {
	Clarity        float64
	Evidence       float64
	Logic          float64
	Persuasiveness float64
	Rebuttal       float64
}

// Total returns the sum of the five dimensions.
func (r Rubric) Total() float64 {
	return r.Clarity + r.Evidence + r.Logic + r.Persuasiveness + r.Rebuttal
}

// Post is one statement in a debate. Posts are immutable once created.
type Post struct {
	ID              string
	DebateNumber    int
	RoundNumber     int
	StatementNumber int
	Type            PostType
	Content         string
	WordCount       int
	AIPersonality   string
	ContainsFallacy bool
	FallacyType     string
	Technique       Technique
	Rubric          *Rubric // nil until scored; never set for AI posts
	BonusPoints     float64
	FinalPercentage *float64
	Moderation      ModerationStatus
	CreatedAt       *time.Time
}

// ChallengeKind distinguishes fallacy accusations from appeal labels.
type ChallengeKind string

const (
	ChallengeFallacy ChallengeKind = "fallacy"
	ChallengeAppeal  ChallengeKind = "appeal"
)

// ChallengeOption is one entry of the catalog a student may pick from when
// challenging the latest AI post.
type ChallengeOption struct {
	Kind        ChallengeKind
	Key         string
	Label       string
	Description string
}

// ChallengeResult is the server's verdict on a challenge.
type ChallengeResult struct {
	Correct     bool
	BonusPoints float64
	Explanation string
}

// Progress is the derived view the server returns for an assignment.
type Progress struct {
	StudentDebate       StudentDebate
	Posts               []Post // current debate, in statement order
	AvailableChallenges []ChallengeOption
	NextAction          NextAction
	CanSubmitPost       bool
	StatementsPerRound  int
	CurrentStatement    int
	Topic               string
}

// LastPost returns the final post in the list.
func (p Progress) LastPost() (Post, bool) {
	if len(p.Posts) == 0 {
		return Post{}, false
	}
	return p.Posts[len(p.Posts)-1], true
}

// ChallengeTarget returns the post a challenge may be attached to: the last
// post, only when it is an AI post and the catalog is non-empty.
func (p Progress) ChallengeTarget() (Post, bool) {
	last, ok := p.LastPost()
	if !ok || last.Type != PostAI || len(p.AvailableChallenges) == 0 {
		return Post{}, false
	}
	return last, true
}

// Challengeable reports whether the post at index i may carry the challenge UI.
func (p Progress) Challengeable(i int) bool {
	_, ok := p.ChallengeTarget()
	return ok && i == len(p.Posts)-1
}

// StudentStatements counts the student's posts in the current debate.
func (p Progress) StudentStatements() int {
	n := 0
	for _, post := range p.Posts {
		if post.Type == PostStudent {
			n++
		}
	}
	return n
}

// ChallengeOption looks up a catalog entry by key.
func (p Progress) ChallengeOption(key string) (ChallengeOption, bool) {
	for _, opt := range p.AvailableChallenges {
		if opt.Key == key {
			return opt, true
		}
	}
	return ChallengeOption{}, false
}

// Assignment is the metadata of a debate assignment.
type Assignment struct {
	ID                 string
	Title              string
	Topic              string
	Description        string
	DueDate            *time.Time
	StatementsPerRound int
	Debates            int
}

// AssignmentScore is the terminal aggregate available once all debates are done.
type AssignmentScore struct {
	AssignmentID     string
	DebateScores     []float64
	ImprovementBonus float64
	ConsistencyBonus float64
	FinalGrade       float64
	LetterGrade      string
	CompletedAt      *time.Time
}

// Snapshot is the controller's state container: the assignment metadata and
// the latest progress, replaced as a whole on every successful fetch.
type Snapshot struct {
	Assignment Assignment
	Progress   Progress
	Sequence   uint64
	FetchedAt  time.Time
}

// View returns the branch selected by the snapshot's nextAction.
func (s Snapshot) View() (View, bool) {
	return Branch(s.Progress.NextAction)
}

// LetterGrade maps a final percentage to the letter shown on results.
func LetterGrade(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
