package msg

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

// Session is the part of the debate controller the TUI drives.
type Session interface {
	Load(ctx context.Context) (debate.Snapshot, error)
	Refresh(ctx context.Context) (debate.Snapshot, error)
	SubmitPost(ctx context.Context, content string, technique debate.Technique) (debate.Snapshot, error)
	SelectPosition(ctx context.Context, position debate.Position) (debate.Snapshot, error)
	SubmitChallenge(ctx context.Context, postID, optionKey string) (debate.ChallengeResult, debate.Snapshot, error)
	Advance(ctx context.Context) (debate.AdvanceOutcome, error)
	Updates() <-chan debate.Update
	Done() <-chan struct{}
}

var _ Session = (*debate.Controller)(nil)

// Load returns a command that fetches the assignment and progress.
func Load(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.Load(ctx)
		return SnapshotMsg{Source: debate.SourceLoad, Snapshot: snap, Err: err}
	}
}

// Refresh returns a command that refetches progress.
func Refresh(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.Refresh(ctx)
		return SnapshotMsg{Source: debate.SourceRefresh, Snapshot: snap, Err: err}
	}
}

// SubmitPost returns a command that sends a statement.
func SubmitPost(ctx context.Context, s Session, content string, technique debate.Technique) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.SubmitPost(ctx, content, technique)
		return SnapshotMsg{Source: debate.SourcePost, Snapshot: snap, Err: err}
	}
}

// SelectPosition returns a command that sends the student's side.
func SelectPosition(ctx context.Context, s Session, position debate.Position) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.SelectPosition(ctx, position)
		return SnapshotMsg{Source: debate.SourcePosition, Snapshot: snap, Err: err}
	}
}

// SubmitChallenge returns a command that challenges an AI post.
func SubmitChallenge(ctx context.Context, s Session, postID, optionKey string) tea.Cmd {
	return func() tea.Msg {
		result, snap, err := s.SubmitChallenge(ctx, postID, optionKey)
		return ChallengeResultMsg{Result: result, Snapshot: snap, Err: err}
	}
}

// Advance returns a command that moves past a completed debate.
func Advance(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		outcome, err := s.Advance(ctx)
		return AdvanceMsg{Outcome: outcome, Err: err}
	}
}

// WaitForUpdate returns a command that blocks until the poller delivers an
// update or the session closes. The model issues it again after each
// UpdateMsg.
func WaitForUpdate(s Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-s.Updates():
			return UpdateMsg{Update: u}
		case <-s.Done():
			return ClosedMsg{}
		}
	}
}
