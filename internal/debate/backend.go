package debate

import "context"

// Backend is the remote API a session talks to. Implementations translate
// the wire format into the domain types of this package and classify
// failures with the errors package.
type Backend interface {
	GetAssignment(ctx context.Context, assignmentID string) (Assignment, error)
	GetProgress(ctx context.Context, assignmentID string) (Progress, error)
	SelectPosition(ctx context.Context, assignmentID string, position Position) error
	SubmitPost(ctx context.Context, assignmentID string, post PostSubmission) (PostReceipt, error)
	SubmitChallenge(ctx context.Context, assignmentID string, challenge ChallengeSubmission) (ChallengeResult, error)
	Advance(ctx context.Context, assignmentID string) (AdvanceResult, error)
	GetScore(ctx context.Context, assignmentID string) (AssignmentScore, error)
}

// PostSubmission is a student statement ready to send.
type PostSubmission struct {
	Content   string
	WordCount int
	Technique Technique
}

// PostReceipt is the backend's acknowledgement of a post. Flagged is set
// when the post was held for moderation instead of accepted.
type PostReceipt struct {
	Post    Post
	Flagged bool
}

// ChallengeSubmission identifies an AI post and the catalog entry used to
// challenge it.
type ChallengeSubmission struct {
	PostID string
	Kind   ChallengeKind
	Key    string
}

// AdvanceResult reports where the assignment went after a debate completed.
type AdvanceResult struct {
	AssignmentComplete bool
	NextDebate         int
}
