package msg

import (
	"github.com/Iron-Ham/rebuttal/internal/debate"
)

// SnapshotMsg carries the outcome of an operation that fetches a new
// snapshot: load, refresh, post submission or position selection.
type SnapshotMsg struct {
	Source   string
	Snapshot debate.Snapshot
	Err      error
}

// ChallengeResultMsg carries the outcome of a challenge submission.
type ChallengeResultMsg struct {
	Result   debate.ChallengeResult
	Snapshot debate.Snapshot
	Err      error
}

// AdvanceMsg carries the outcome of moving past a completed debate.
type AdvanceMsg struct {
	Outcome debate.AdvanceOutcome
	Err     error
}

// UpdateMsg wraps a snapshot pushed by the background poller.
type UpdateMsg struct {
	Update debate.Update
}

// ClosedMsg signals that the session was closed and no further updates
// will arrive.
type ClosedMsg struct{}

// ErrMsg wraps an error to be displayed in the UI.
type ErrMsg struct {
	Err error
}
