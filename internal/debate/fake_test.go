package debate

import (
	"context"
	"strings"
	"sync"
)

// fakeBackend is an in-memory Backend. Progress is whatever was last set;
// hooks let a test change it as a side effect of a mutation.
type fakeBackend struct {
	mu sync.Mutex

	assignment    Assignment
	assignmentErr error
	progress      Progress
	progressErr   error

	postReceipt     PostReceipt
	postErr         error
	positionErr     error
	challengeResult ChallengeResult
	challengeErr    error
	advanceResult   AdvanceResult
	advanceErr      error

	onPost     func(PostSubmission)
	onPosition func(Position)
	onAdvance  func()

	lastPost      PostSubmission
	lastChallenge ChallengeSubmission

	calls   map[string]int
	gates   map[string]chan struct{}
	entered map[string]chan struct{}
}

func newFakeBackend(p Progress) *fakeBackend {
	return &fakeBackend{
		assignment: Assignment{
			ID:                 "42",
			Title:              "School uniforms",
			Topic:              "Should schools require uniforms?",
			StatementsPerRound: 5,
			Debates:            NumDebates,
		},
		progress: p,
		calls:    make(map[string]int),
		gates:    make(map[string]chan struct{}),
		entered:  make(map[string]chan struct{}),
	}
}

// gate makes the next calls to op block until the returned func is called.
// The entered channel receives once per call that reaches the gate.
func (f *fakeBackend) gate(op string) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	e := make(chan struct{}, 8)
	f.gates[op] = g
	f.entered[op] = e
	var once sync.Once
	return e, func() { once.Do(func() { close(g) }) }
}

func (f *fakeBackend) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	g, e := f.gates[op], f.entered[op]
	f.mu.Unlock()

	if e != nil {
		e <- struct{}{}
	}
	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) setProgress(p Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = p
}

func (f *fakeBackend) setProgressErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressErr = err
}

func (f *fakeBackend) GetAssignment(ctx context.Context, _ string) (Assignment, error) {
	if err := f.enter(ctx, "assignment"); err != nil {
		return Assignment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignment, f.assignmentErr
}

func (f *fakeBackend) GetProgress(ctx context.Context, _ string) (Progress, error) {
	if err := f.enter(ctx, "progress"); err != nil {
		return Progress{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return Progress{}, f.progressErr
	}
	return f.progress, nil
}

func (f *fakeBackend) SelectPosition(ctx context.Context, _ string, position Position) error {
	if err := f.enter(ctx, "position"); err != nil {
		return err
	}
	f.mu.Lock()
	err, hook := f.positionErr, f.onPosition
	f.mu.Unlock()
	if err == nil && hook != nil {
		hook(position)
	}
	return err
}

func (f *fakeBackend) SubmitPost(ctx context.Context, _ string, post PostSubmission) (PostReceipt, error) {
	if err := f.enter(ctx, "post"); err != nil {
		return PostReceipt{}, err
	}
	f.mu.Lock()
	f.lastPost = post
	receipt, err, hook := f.postReceipt, f.postErr, f.onPost
	f.mu.Unlock()
	if err == nil && !receipt.Flagged && hook != nil {
		hook(post)
	}
	return receipt, err
}

func (f *fakeBackend) SubmitChallenge(ctx context.Context, _ string, ch ChallengeSubmission) (ChallengeResult, error) {
	if err := f.enter(ctx, "challenge"); err != nil {
		return ChallengeResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChallenge = ch
	return f.challengeResult, f.challengeErr
}

func (f *fakeBackend) Advance(ctx context.Context, _ string) (AdvanceResult, error) {
	if err := f.enter(ctx, "advance"); err != nil {
		return AdvanceResult{}, err
	}
	f.mu.Lock()
	res, err, hook := f.advanceResult, f.advanceErr, f.onAdvance
	f.mu.Unlock()
	if err == nil && hook != nil {
		hook()
	}
	return res, err
}

func (f *fakeBackend) GetScore(ctx context.Context, _ string) (AssignmentScore, error) {
	if err := f.enter(ctx, "score"); err != nil {
		return AssignmentScore{}, err
	}
	return AssignmentScore{AssignmentID: "42"}, nil
}

// progressAt builds debate-1 progress with the given action and posts.
func progressAt(action NextAction, posts ...Post) Progress {
	return Progress{
		StudentDebate: StudentDebate{
			ID:            "sd-1",
			AssignmentID:  "42",
			Status:        StatusDebate1,
			CurrentDebate: 1,
			CurrentRound:  1,
			Positions:     []Position{PositionChoice, PositionPro, PositionCon},
			FallacyCounts: make([]int, NumDebates),
			Scores:        make([]*float64, NumDebates),
		},
		Posts:              posts,
		NextAction:         action,
		CanSubmitPost:      action == ActionSubmitPost,
		StatementsPerRound: 5,
		CurrentStatement:   len(posts)/2 + 1,
		Topic:              "Should schools require uniforms?",
	}
}

func studentPost(id string, n int) Post {
	return Post{ID: id, DebateNumber: 1, StatementNumber: n, Type: PostStudent, Content: words(100), WordCount: 100, Moderation: ModerationApproved}
}

func aiPost(id string, n int) Post {
	return Post{ID: id, DebateNumber: 1, StatementNumber: n, Type: PostAI, Content: "A reply.", WordCount: 2, AIPersonality: "socratic", Moderation: ModerationApproved}
}

func catalog() []ChallengeOption {
	return []ChallengeOption{
		{Kind: ChallengeFallacy, Key: "ad_hominem", Label: "Ad hominem"},
		{Kind: ChallengeAppeal, Key: "pathos", Label: "Appeal to emotion"},
	}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
