package msg

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/rebuttal/internal/debate"
)

type stubSession struct {
	snap    debate.Snapshot
	err     error
	calls   []string
	content string
	pos     debate.Position
	option  string
	updates chan debate.Update
	done    chan struct{}
}

func newStub() *stubSession {
	return &stubSession{
		snap:    debate.Snapshot{Sequence: 7},
		updates: make(chan debate.Update, 1),
		done:    make(chan struct{}),
	}
}

func (s *stubSession) Load(context.Context) (debate.Snapshot, error) {
	s.calls = append(s.calls, "load")
	return s.snap, s.err
}

func (s *stubSession) Refresh(context.Context) (debate.Snapshot, error) {
	s.calls = append(s.calls, "refresh")
	return s.snap, s.err
}

func (s *stubSession) SubmitPost(_ context.Context, content string, _ debate.Technique) (debate.Snapshot, error) {
	s.calls = append(s.calls, "post")
	s.content = content
	return s.snap, s.err
}

func (s *stubSession) SelectPosition(_ context.Context, p debate.Position) (debate.Snapshot, error) {
	s.calls = append(s.calls, "position")
	s.pos = p
	return s.snap, s.err
}

func (s *stubSession) SubmitChallenge(_ context.Context, _ string, key string) (debate.ChallengeResult, debate.Snapshot, error) {
	s.calls = append(s.calls, "challenge")
	s.option = key
	return debate.ChallengeResult{Correct: true, BonusPoints: 2}, s.snap, s.err
}

func (s *stubSession) Advance(context.Context) (debate.AdvanceOutcome, error) {
	s.calls = append(s.calls, "advance")
	return debate.AdvanceOutcome{Snapshot: s.snap, Redirect: "/done"}, s.err
}

func (s *stubSession) Updates() <-chan debate.Update { return s.updates }
func (s *stubSession) Done() <-chan struct{}         { return s.done }

func TestSnapshotCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		cmd    func(Session) tea.Cmd
		source string
	}{
		{"load", func(s Session) tea.Cmd { return Load(ctx, s) }, debate.SourceLoad},
		{"refresh", func(s Session) tea.Cmd { return Refresh(ctx, s) }, debate.SourceRefresh},
		{"post", func(s Session) tea.Cmd { return SubmitPost(ctx, s, "words", debate.TechniqueLogos) }, debate.SourcePost},
		{"position", func(s Session) tea.Cmd { return SelectPosition(ctx, s, debate.PositionCon) }, debate.SourcePosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStub()
			m := tt.cmd(s)()
			got, ok := m.(SnapshotMsg)
			if !ok {
				t.Fatalf("command returned %T, want SnapshotMsg", m)
			}
			if got.Source != tt.source {
				t.Errorf("Source = %q, want %q", got.Source, tt.source)
			}
			if got.Snapshot.Sequence != 7 || got.Err != nil {
				t.Errorf("msg = %+v", got)
			}
			if len(s.calls) != 1 || s.calls[0] != tt.name {
				t.Errorf("calls = %v", s.calls)
			}
		})
	}
}

func TestSnapshotCommands_CarryError(t *testing.T) {
	s := newStub()
	s.err = errors.New("boom")
	got := SubmitPost(context.Background(), s, "draft", "")().(SnapshotMsg)
	if !errors.Is(got.Err, s.err) {
		t.Errorf("Err = %v, want %v", got.Err, s.err)
	}
	if s.content != "draft" {
		t.Errorf("content = %q", s.content)
	}
}

func TestSubmitChallenge(t *testing.T) {
	s := newStub()
	got, ok := SubmitChallenge(context.Background(), s, "p1", "ad_hominem")().(ChallengeResultMsg)
	if !ok {
		t.Fatal("want ChallengeResultMsg")
	}
	if !got.Result.Correct || got.Result.BonusPoints != 2 {
		t.Errorf("Result = %+v", got.Result)
	}
	if s.option != "ad_hominem" {
		t.Errorf("option = %q", s.option)
	}
}

func TestAdvance(t *testing.T) {
	s := newStub()
	got, ok := Advance(context.Background(), s)().(AdvanceMsg)
	if !ok {
		t.Fatal("want AdvanceMsg")
	}
	if got.Outcome.Redirect != "/done" {
		t.Errorf("Redirect = %q", got.Outcome.Redirect)
	}
}

func TestWaitForUpdate(t *testing.T) {
	s := newStub()
	s.updates <- debate.Update{Source: debate.SourcePoll, Snapshot: debate.Snapshot{Sequence: 9}}

	got, ok := WaitForUpdate(s)().(UpdateMsg)
	if !ok {
		t.Fatal("want UpdateMsg")
	}
	if got.Update.Snapshot.Sequence != 9 {
		t.Errorf("Sequence = %d", got.Update.Snapshot.Sequence)
	}
}

func TestWaitForUpdate_Closed(t *testing.T) {
	s := newStub()
	cmd := WaitForUpdate(s)

	result := make(chan any, 1)
	go func() { result <- cmd() }()
	close(s.done)

	select {
	case m := <-result:
		if _, ok := m.(ClosedMsg); !ok {
			t.Errorf("got %T, want ClosedMsg", m)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForUpdate did not return after close")
	}
}
